package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
	"github.com/pantry-labs/gourmet-cli/internal/core/services"
)

var (
	searchName        string
	searchIngredients string
	searchLimit       int
	searchCursor      string
	searchJSON        bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search recipes without a chat session",
	Long: `Runs one page of a recipe search and prints where it stopped.
Pass the printed cursor back via --cursor to fetch the next page.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchName, "name", "", "dish name to search for")
	searchCmd.Flags().StringVar(&searchIngredients, "ingredients", "", "comma-separated ingredients, all required")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 1, "recipes per page")
	searchCmd.Flags().StringVar(&searchCursor, "cursor", "", "resume position as chunk:offset")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	query, err := buildQuery()
	if err != nil {
		return err
	}
	cursor, err := parseCursor(searchCursor)
	if err != nil {
		return err
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.source.Ensure(ctx); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}

	page, err := a.scanner.ScanNextPage(ctx, query, cursor, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, page)
	}
	return outputSearchTable(cmd, query, page)
}

func buildQuery() (domain.Query, error) {
	switch {
	case searchName != "" && searchIngredients != "":
		return nil, errors.New("set either --name or --ingredients, not both")

	case searchName != "":
		name, err := services.NormalizeName(searchName)
		if err != nil || name == "" {
			return nil, fmt.Errorf("invalid name %q: %w", searchName, domain.ErrInvalidQuery)
		}
		return domain.NameQuery{Text: name}, nil

	case searchIngredients != "":
		terms, err := services.SplitTerms(searchIngredients)
		if err != nil || len(terms) == 0 {
			return nil, fmt.Errorf("invalid ingredients %q: %w", searchIngredients, domain.ErrInvalidQuery)
		}
		return domain.IngredientQuery{Terms: terms}, nil

	default:
		return nil, errors.New("set --name or --ingredients")
	}
}

func parseCursor(s string) (domain.Cursor, error) {
	if s == "" {
		return domain.Cursor{}, nil
	}
	chunkPart, offsetPart, ok := strings.Cut(s, ":")
	if !ok {
		return domain.Cursor{}, fmt.Errorf("cursor must be chunk:offset, got %q", s)
	}
	chunk, err := strconv.Atoi(chunkPart)
	if err != nil || chunk < 0 {
		return domain.Cursor{}, fmt.Errorf("bad chunk in cursor %q", s)
	}
	offset, err := strconv.Atoi(offsetPart)
	if err != nil || offset < 0 {
		return domain.Cursor{}, fmt.Errorf("bad offset in cursor %q", s)
	}
	return domain.Cursor{Chunk: chunk, Offset: offset}, nil
}

func formatCursor(c domain.Cursor) string {
	return fmt.Sprintf("%d:%d", c.Chunk, c.Offset)
}

func outputSearchJSON(cmd *cobra.Command, page domain.Page) error {
	out := struct {
		Results   []domain.Recipe `json:"results"`
		Cursor    string          `json:"cursor"`
		Exhausted bool            `json:"exhausted"`
	}{
		Results:   page.Rows,
		Cursor:    formatCursor(page.Cursor),
		Exhausted: page.Exhausted,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, query domain.Query, page domain.Page) error {
	if len(page.Rows) == 0 {
		cmd.Printf("No results for %q.\n", query.Describe())
		return nil
	}

	cmd.Printf("Results for %q:\n\n", query.Describe())
	for i, row := range page.Rows {
		cmd.Printf("  [%d] %s\n", i+1, row.Title)
	}
	cmd.Println()
	if page.Exhausted {
		cmd.Println("No more matches.")
	} else {
		cmd.Printf("More available, resume with --cursor %s\n", formatCursor(page.Cursor))
	}
	return nil
}
