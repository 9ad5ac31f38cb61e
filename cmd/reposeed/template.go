package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/reposeed/internal/events"
	"github.com/TheMichaelB/reposeed/internal/models"
	"github.com/TheMichaelB/reposeed/internal/storage"
	"github.com/TheMichaelB/reposeed/internal/services/sync"
	"github.com/TheMichaelB/reposeed/internal/templatestore"
)

var (
	scanName string

	syncVars      []string
	syncVarsJSON  string
	syncOverwrite bool
	syncNoBackup  bool

	compareDir bool

	storeTo     string
	storeDBPath string
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"tpl"},
	Short:   "Capture, list, compare and replay directory templates",
}

var templateScanCmd = &cobra.Command{
	Use:   "scan <source-dir>",
	Short: "Capture a directory as a named template",
	Example: `  reposeed template scan ./my-project
  reposeed template scan ./my-project --name web-service`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplateScan,
}

var templateSyncCmd = &cobra.Command{
	Use:   "sync <template> [target-dir]",
	Short: "Recreate a template's files under a target directory",
	Long: `Sync writes every file of a template under the target directory, replacing
{NAME} placeholders with the values given by --var. Existing files are kept
and an existing target is backed up first, unless the sync rules or flags
say otherwise. The target defaults to <output_dir>/<template>.`,
	Example: `  reposeed template sync web-service ./new-service --var PROJECT_NAME=billing
  reposeed template sync web-service --vars-json '{"OWNER": "octo"}' --overwrite`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTemplateSync,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplateList,
}

var templateCompareCmd = &cobra.Command{
	Use:   "compare <template> <template|dir>",
	Short: "Show how the second template differs from the first",
	Example: `  reposeed template compare web-service web-service-v2
  reposeed template compare web-service ./checkout --dir`,
	Args: cobra.ExactArgs(2),
	RunE: runTemplateCompare,
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <template>",
	Short: "Remove a stored template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateDelete,
}

var templateMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy every template to another store backend",
	Example: `  reposeed template migrate --to sqlite --db-path templates/templates.db
  reposeed template migrate --to json`,
	Args: cobra.NoArgs,
	RunE: runTemplateMigrate,
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateScanCmd, templateSyncCmd, templateListCmd,
		templateCompareCmd, templateDeleteCmd, templateMigrateCmd)

	templateScanCmd.Flags().StringVarP(&scanName, "name", "n", "",
		"Template name (default: source directory name)")

	templateSyncCmd.Flags().StringArrayVar(&syncVars, "var", nil,
		"Template variable as NAME=value (repeatable)")
	templateSyncCmd.Flags().StringVar(&syncVarsJSON, "vars-json", "",
		"Template variables as a JSON object")
	templateSyncCmd.Flags().BoolVar(&syncOverwrite, "overwrite", false,
		"Overwrite files that already exist in the target")
	templateSyncCmd.Flags().BoolVar(&syncNoBackup, "no-backup", false,
		"Skip the backup of an existing target")

	templateCompareCmd.Flags().BoolVar(&compareDir, "dir", false,
		"Treat the second argument as a directory to scan")

	templateMigrateCmd.Flags().StringVar(&storeTo, "to", "",
		"Destination backend (json, sqlite)")
	templateMigrateCmd.Flags().StringVar(&storeDBPath, "db-path", "",
		"SQLite database path for the destination (default: store.db_path)")
	_ = templateMigrateCmd.MarkFlagRequired("to")
}

// newSynchronizer opens the configured template store and a synchronizer
// over the local file system. Paths given to it must be slash-separated and
// absolute; see fsPath.
func newSynchronizer(log *events.Logger) (*sync.Synchronizer, templatestore.Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, err
	}

	store, err := templatestore.Open(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	fs, err := storage.NewLocalStore("/", log)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	rules := cfg.SyncRules
	if syncOverwrite {
		rules.PreserveExisting = false
	}
	if syncNoBackup {
		rules.BackupBeforeSync = false
	}

	return sync.NewSynchronizer(fs, store, rules, log), store, nil
}

func fsPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", p, err)
	}
	return filepath.ToSlash(abs), nil
}

func runTemplateScan(cmd *cobra.Command, args []string) error {
	source, err := fsPath(args[0])
	if err != nil {
		return err
	}

	name := scanName
	if name == "" {
		name = filepath.Base(filepath.FromSlash(source))
	}

	ctx := events.WithTemplate(cmd.Context(), name)
	s, store, err := newSynchronizer(events.FromContext(ctx))
	if err != nil {
		return err
	}
	defer store.Close()

	ds, err := s.Scan(ctx, source)
	if err != nil {
		return err
	}

	if err := s.Save(name, ds); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"template": name,
			"source":   source,
			"files":    ds.FileCount(),
		})
		return nil
	}

	printSuccess("✓ Template '%s' scanned and saved (%d files)", name, ds.FileCount())
	return nil
}

func runTemplateSync(cmd *cobra.Command, args []string) error {
	name := args[0]

	target := filepath.Join(cfg.OutputDir, name)
	if len(args) > 1 {
		target = args[1]
	}
	target, err := fsPath(target)
	if err != nil {
		return err
	}

	vars, err := parseVars(syncVars, syncVarsJSON)
	if err != nil {
		return err
	}

	ctx := events.WithTemplate(cmd.Context(), name)
	s, store, err := newSynchronizer(events.FromContext(ctx))
	if err != nil {
		return err
	}
	defer store.Close()

	ds, err := s.Load(name)
	if err != nil {
		return err
	}

	report, err := s.Sync(ctx, ds, target, vars)
	if jsonOutput {
		result := map[string]interface{}{
			"success":  err == nil,
			"template": name,
			"report":   report,
		}
		if err != nil {
			result["error"] = err.Error()
		}
		printJSON(result)
		return err
	}

	if report != nil {
		if report.Backup != "" {
			printInfo("Backup: %s", report.Backup)
		}
		for _, p := range report.Created {
			fmt.Printf("  %s %s\n", statusLabel("CREATE"), p)
		}
		for _, p := range report.Preserved {
			fmt.Printf("  %s %s\n", statusLabel("PRESERVE"), p)
		}
	}
	if err != nil {
		return err
	}

	printSuccess("✓ Template '%s' synced to %s (%d created, %d preserved)",
		name, target, len(report.Created), len(report.Preserved))
	return nil
}

// parseVars merges --vars-json with --var NAME=value pairs; pairs win.
func parseVars(pairs []string, rawJSON string) (map[string]string, error) {
	vars := map[string]string{}

	if rawJSON != "" {
		if err := json.Unmarshal([]byte(rawJSON), &vars); err != nil {
			return nil, fmt.Errorf("parse --vars-json: %w", err)
		}
	}

	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --var %q (want NAME=value)", pair)
		}
		vars[k] = v
	}

	return vars, nil
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	s, store, err := newSynchronizer(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := s.List()
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(names)
		return nil
	}

	if len(names) == 0 {
		printWarning("No templates found in %s store", cfg.Store.Backend)
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runTemplateCompare(cmd *cobra.Command, args []string) error {
	s, store, err := newSynchronizer(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	first, err := s.Load(args[0])
	if err != nil {
		return err
	}

	var second *models.DirectoryStructure
	if compareDir {
		dir, err := fsPath(args[1])
		if err != nil {
			return err
		}
		second, err = s.Scan(cmd.Context(), dir)
		if err != nil {
			return err
		}
	} else {
		second, err = s.Load(args[1])
		if err != nil {
			return err
		}
	}

	cmp := s.Compare(first, second)
	if jsonOutput {
		printJSON(cmp)
		return nil
	}

	if !cmp.HasChanges() {
		printSuccess("✓ No differences")
		return nil
	}

	printSection("Files", cmp.FilesAdded, cmp.FilesRemoved, cmp.FilesModified)
	printSection("Directories", cmp.DirsAdded, cmp.DirsRemoved, nil)
	return nil
}

func printSection(title string, added, removed, modified []string) {
	if len(added)+len(removed)+len(modified) == 0 {
		return
	}
	boldColor.Printf("%s:\n", title)
	for _, p := range added {
		fmt.Printf("  %s %s\n", statusLabel("ADDED"), p)
	}
	for _, p := range removed {
		fmt.Printf("  %s %s\n", statusLabel("REMOVED"), p)
	}
	for _, p := range modified {
		fmt.Printf("  %s %s\n", statusLabel("MODIFIED"), p)
	}
}

func runTemplateDelete(cmd *cobra.Command, args []string) error {
	ctx := events.WithTemplate(cmd.Context(), args[0])
	s, store, err := newSynchronizer(events.FromContext(ctx))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := s.Delete(args[0]); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"deleted": args[0]})
		return nil
	}
	printSuccess("✓ Template '%s' deleted", args[0])
	return nil
}

func runTemplateMigrate(cmd *cobra.Command, args []string) error {
	dstCfg := *cfg
	dstCfg.Store.Backend = strings.ToLower(storeTo)
	if storeDBPath != "" {
		dstCfg.Store.DBPath = storeDBPath
	}
	if err := dstCfg.Validate(); err != nil {
		return err
	}
	if dstCfg.Store == cfg.Store {
		return fmt.Errorf("source and destination store are the same (%s)", cfg.Store.Backend)
	}
	if err := dstCfg.EnsureDirectories(); err != nil {
		return err
	}

	src, err := templatestore.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := templatestore.Open(&dstCfg, logger)
	if err != nil {
		return err
	}
	defer dst.Close()

	n, err := templatestore.Copy(src, dst)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"from":   cfg.Store.Backend,
			"to":     dstCfg.Store.Backend,
			"copied": n,
		})
		return nil
	}

	printSuccess("✓ Copied %d template(s) from %s to %s store", n, cfg.Store.Backend, dstCfg.Store.Backend)
	return nil
}
