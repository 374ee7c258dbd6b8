package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/sweep/internal/config"
	"github.com/dyluth/sweep/pkg/layout"
)

//go:embed templates/*
var templatesFS embed.FS

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string // relative to the project directory
	Template    string
	Permissions os.FileMode
}

// projectFiles are written by Initialize, in order.
var projectFiles = []FileInfo{
	{Path: "sweep.yml", Template: "templates/sweep.yml.tmpl", Permissions: 0644},
	{Path: "layout.json", Template: "templates/layout.json", Permissions: 0644},
	{Path: filepath.Join("corpus", "sample.txt"), Template: "templates/sample.txt", Permissions: 0644},
}

// Initialize creates a sweep project in dir: a config file, a QWERTY
// starting layout and a sample corpus. If force is true, existing project
// files are replaced.
func Initialize(dir string, force bool) error {
	if force {
		if err := handleForce(dir); err != nil {
			return err
		}
	}

	for _, d := range []string{"corpus", ".sweep"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	for _, file := range projectFiles {
		content, err := templatesFS.ReadFile(file.Template)
		if err != nil {
			return fmt.Errorf("failed to read %s template: %w", file.Path, err)
		}
		if err := os.WriteFile(filepath.Join(dir, file.Path), content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return validateCreatedFiles(dir)
}

// handleForce removes existing project files if --force was specified
func handleForce(dir string) error {
	for _, file := range projectFiles {
		path := filepath.Join(dir, file.Path)
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("⚠️  Removing existing %s...\n", file.Path)
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", file.Path, err)
			}
		}
	}
	return nil
}

// validateCreatedFiles checks that the written config and layout load
func validateCreatedFiles(dir string) error {
	cfg, err := config.Load(filepath.Join(dir, "sweep.yml"))
	if err != nil {
		return fmt.Errorf("created sweep.yml is invalid: %w", err)
	}
	if _, err := layout.ReadFile(cfg.Layout); err != nil {
		return fmt.Errorf("created layout is invalid: %w", err)
	}
	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	fmt.Println("\n✅ Successfully initialized sweep project!")
	fmt.Println("\nCreated:")
	for _, file := range projectFiles {
		fmt.Printf("  ✓ %s\n", filepath.ToSlash(file.Path))
	}
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Add '.sweep/' to your .gitignore file")
	fmt.Println("  2. Put text you type into corpus/ (plain or .xz)")
	fmt.Println("  3. Run 'sweep score' to see the cost of the starting layout")
	fmt.Println("  4. Run 'sweep optimise' to search for a better one")
}
