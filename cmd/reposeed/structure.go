package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/reposeed/internal/models"
	"github.com/TheMichaelB/reposeed/internal/parser"
)

var (
	schemaPath string
	noSchema   bool

	dirsWithFiles bool

	migrateTarget string
	migrateOutput string

	exportOutput string
	exportLayout string
	exportCompact bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <structure-file>",
	Short: "Validate a structure document",
	Long: `Validate checks a structure document against the schema contract and the
semantic rules, and reports every error and warning found.`,
	Example: `  reposeed validate structure.json
  reposeed validate structure.yaml --json
  reposeed validate structure.json --no-schema`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var showCmd = &cobra.Command{
	Use:   "show <structure-file>",
	Short: "Parse a structure document and print its contents",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var dirsCmd = &cobra.Command{
	Use:   "dirs <structure-file>",
	Short: "List every directory a structure document describes",
	Args:  cobra.ExactArgs(1),
	RunE:  runDirs,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <structure-file>",
	Short: "Migrate a structure document to a newer schema version",
	Example: `  reposeed migrate structure.json --to 2.0
  reposeed migrate structure.json --output structure-v2.json`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

var exportCmd = &cobra.Command{
	Use:   "export <structure-file>",
	Short: "Re-serialize a structure document",
	Long: `Export parses a structure document and writes it back out, as JSON or YAML
depending on the output extension, in the flat (v1) or nested (v2) layout.`,
	Example: `  reposeed export structure.yaml --output structure.json
  reposeed export structure.json --output out/structure.yaml --layout v2`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var queryCmd = &cobra.Command{
	Use:   "query <structure-file> <jsonpath>",
	Short: "Evaluate a JSONPath expression against a structure document",
	Example: `  reposeed query structure.json '$.metadata.project_name'
  reposeed query structure.json "$.structure['meta-repo'].*"`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the active validation contract",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func init() {
	for _, cmd := range []*cobra.Command{validateCmd, showCmd, dirsCmd, migrateCmd, exportCmd, queryCmd, schemaCmd} {
		rootCmd.AddCommand(cmd)
		cmd.Flags().StringVar(&schemaPath, "schema", "",
			"Schema contract file (default: built-in)")
		cmd.Flags().BoolVar(&noSchema, "no-schema", false,
			"Skip the schema contract and run only the basic checks")
	}

	dirsCmd.Flags().BoolVar(&dirsWithFiles, "files", false,
		"Also list the files in each directory")

	migrateCmd.Flags().StringVar(&migrateTarget, "to", "2.0",
		"Target schema version")
	migrateCmd.Flags().StringVarP(&migrateOutput, "output", "o", "",
		"Write the migrated document here instead of stdout")

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"Output file (required)")
	exportCmd.Flags().StringVar(&exportLayout, "layout", "v1",
		"Document layout (v1, v2)")
	exportCmd.Flags().BoolVar(&exportCompact, "compact", false,
		"Write JSON without indentation")
	_ = exportCmd.MarkFlagRequired("output")
}

func newParser() (*parser.Parser, error) {
	schemaCfg := cfg.Schema
	if schemaPath != "" {
		schemaCfg.Path = schemaPath
	}
	if noSchema {
		schemaCfg.Disabled = true
		schemaCfg.Strict = false
	}

	v, err := parser.ValidatorFromConfig(schemaCfg, logger)
	if err != nil {
		return nil, err
	}
	return parser.New(v, logger), nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}

	result, err := p.ValidateFile(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(result)
	} else {
		printValidation(args[0], result)
	}

	if !result.IsValid() {
		return fmt.Errorf("%s: %s", args[0], result.Summary())
	}
	return nil
}

func printValidation(file string, result *models.ValidationResult) {
	switch {
	case !result.IsValid():
		errorColor.Printf("✗ %s: %s\n", file, result.Summary())
	case result.HasWarnings():
		warnColor.Printf("! %s: %s\n", file, result.Summary())
	default:
		successColor.Printf("✓ %s: %s\n", file, result.Summary())
	}

	if result.SchemaVersion != "" {
		fmt.Printf("  Schema version: %s\n", result.SchemaVersion)
	}

	for _, issue := range result.Errors() {
		fmt.Printf("  %s %s\n", errorColor.Sprint("error"), issue.String())
	}
	for _, issue := range result.Warnings() {
		fmt.Printf("  %s %s\n", warnColor.Sprint("warn "), issue.String())
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}

	s, err := p.ParseFile(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(s)
		return nil
	}

	boldColor.Printf("%s\n", s.ProjectName)
	fmt.Printf("  Owner:          %s\n", s.GitHubUsername)
	fmt.Printf("  Version:        %s\n", s.Version)
	fmt.Printf("  Schema version: %s (%s layout)\n", s.SchemaVersion, s.Shape)
	if s.CreatedDate != "" {
		fmt.Printf("  Created:        %s\n", s.CreatedDate)
	}
	if s.Description != "" {
		fmt.Printf("  Description:    %s\n", s.Description)
	}
	if len(s.Tags) > 0 {
		fmt.Printf("  Tags:           %s\n", strings.Join(s.Tags, ", "))
	}

	fmt.Println()
	printTree(s.Structure, "")
	return nil
}

func printTree(tree models.Tree, indent string) {
	for _, entry := range tree {
		if entry.Kind == models.FileListEntry {
			infoColor.Printf("%s%s/\n", indent, entry.Name)
			for _, f := range entry.Files {
				fmt.Printf("%s  %s\n", indent, f)
			}
			continue
		}
		boldColor.Printf("%s%s/\n", indent, entry.Name)
		printTree(entry.Children, indent+"  ")
	}
}

func runDirs(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}

	s, err := p.ParseFile(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		if dirsWithFiles {
			printJSON(s.AllFiles())
		} else {
			printJSON(s.AllDirectories())
		}
		return nil
	}

	files := s.AllFiles()
	slashDirs := s.AllDirectories()
	for i, dir := range parser.DirectoryStructure(s) {
		fmt.Println(dir)
		if dirsWithFiles {
			for _, f := range files[slashDirs[i]] {
				fmt.Printf("  %s\n", f)
			}
		}
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}

	migrated, err := p.LoadWithMigration(args[0], migrateTarget)
	if err != nil {
		return err
	}

	if migrateOutput == "" {
		data, err := models.EncodeStructure(migrated, models.ShapeV2, models.FormatFromPath(args[0]), true)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := p.Export(migrated, migrateOutput, parser.ExportOptions{Layout: models.ShapeV2, Pretty: true}); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"source":         args[0],
			"output":         migrateOutput,
			"schema_version": migrated.SchemaVersion,
		})
		return nil
	}

	printSuccess("✓ Migrated %s to schema %s: %s", args[0], migrated.SchemaVersion, migrateOutput)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	layout, err := parseLayout(exportLayout)
	if err != nil {
		return err
	}

	p, err := newParser()
	if err != nil {
		return err
	}

	s, err := p.ParseFile(args[0])
	if err != nil {
		return err
	}

	if err := p.Export(s, exportOutput, parser.ExportOptions{Layout: layout, Pretty: !exportCompact}); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"source": args[0],
			"output": exportOutput,
			"layout": layout.String(),
		})
		return nil
	}

	printSuccess("✓ Exported %s to %s (%s layout)", args[0], exportOutput, layout)
	return nil
}

func parseLayout(s string) (models.Shape, error) {
	switch strings.ToLower(s) {
	case "v1", "1", "flat":
		return models.ShapeV1, nil
	case "v2", "2", "nested":
		return models.ShapeV2, nil
	default:
		return 0, fmt.Errorf("unknown layout %q (want v1 or v2)", s)
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}

	results, err := p.QueryFile(args[0], args[1])
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(results)
		return nil
	}

	for _, r := range results {
		if s, ok := r.(string); ok {
			fmt.Println(s)
			continue
		}
		printJSON(r)
	}
	return nil
}

func runSchema(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}

	info := p.SchemaInfo()
	if jsonOutput {
		printJSON(info)
		return nil
	}

	if info.Loaded {
		printSuccess("Schema contract loaded")
	} else {
		printWarning("No schema contract, basic checks only")
	}
	fmt.Printf("  Source:  %s\n", info.Source)
	fmt.Printf("  Version: %s\n", info.Version)
	return nil
}
