package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"gorm.io/gorm/logger"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/database/authors"
	"github.com/mrlokans/catalog/internal/database/books"
)

// ImportBooksCommand loads a JSON array of books into the catalog database.
type ImportBooksCommand struct {
	FilePath     string
	DatabasePath string
	Verbose      bool
	DryRun       bool
}

func NewImportBooksCommand() *ImportBooksCommand {
	return &ImportBooksCommand{}
}

func (cmd *ImportBooksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-books", flag.ContinueOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to a JSON file holding an array of books (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every imported book")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the file without writing to the database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-books -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books from a JSON array of objects with the fields\n")
		fmt.Fprintf(os.Stderr, "title, published_year, genres and author_names.\n\n")
		fmt.Fprintf(os.Stderr, "The whole file is validated first; nothing is written when any entry is invalid.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-books -file books.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import-books -file books.json -db ./data/catalog.db -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *ImportBooksCommand) Run() error {
	fmt.Println("Import Books")
	fmt.Println("============")

	inputs, err := readBookInputs(cmd.FilePath)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d books in %s\n", len(inputs), cmd.FilePath)

	if err := validateInputs(inputs); err != nil {
		return err
	}

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - all entries are valid, nothing was written")
		return nil
	}

	db, err := database.Open(cmd.DatabasePath, logger.Silent)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := books.NewRepository(db.DB, authors.NewRegistry(db.DB))
	created, err := repo.BulkCreate(context.Background(), inputs)
	if cmd.Verbose {
		for _, book := range created {
			fmt.Printf("  + %s (%d) by %v\n", book.Title, book.PublishedYear, book.Authors)
		}
	}
	if err != nil {
		return fmt.Errorf("imported %d of %d books before failing: %w", len(created), len(inputs), err)
	}

	fmt.Printf("Imported %d books\n", len(created))
	return nil
}

func readBookInputs(path string) ([]catalog.BookInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("books file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read books file: %w", err)
	}

	var inputs []catalog.BookInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse books file: %w", err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("books file %s holds no books", path)
	}
	return inputs, nil
}

func validateInputs(inputs []catalog.BookInput) error {
	var errs []error
	for i, in := range inputs {
		if err := catalog.ValidateInput(in.Normalized()); err != nil {
			errs = append(errs, fmt.Errorf("book %d (%q): %w", i, in.Title, err))
		}
	}
	return errors.Join(errs...)
}
