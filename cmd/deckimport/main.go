// Command deckimport loads a deck of cards from an xlsx or csv file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vytor/flashqueue/internal/config"
	"github.com/vytor/flashqueue/internal/db"
	"github.com/vytor/flashqueue/internal/importer"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/repository/sqlite"
	"github.com/vytor/flashqueue/internal/services"
)

func main() {
	cfg := config.Load()
	defaults := importer.DefaultConfig()

	var (
		file        = flag.String("file", "", "xlsx or csv file to import")
		title       = flag.String("title", "", "deck title (defaults to the file name)")
		description = flag.String("description", "", "deck description")
		sheet       = flag.String("sheet", "", "xlsx sheet name (defaults to the first sheet)")
		qCol        = flag.Int("question-col", defaults.QuestionColumn+1, "1-based column holding questions")
		aCol        = flag.Int("answer-col", defaults.AnswerColumn+1, "1-based column holding answers")
		startRow    = flag.Int("start-row", defaults.StartRow, "first data row, 1-based")
		dbPath      = flag.String("db", cfg.DBPath, "database path")
	)
	flag.Parse()

	log := logger.New(logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	logger.SetDefault(log)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: deckimport -file deck.xlsx [-title name]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *title == "" {
		*title = strings.TrimSuffix(filepath.Base(*file), filepath.Ext(*file))
	}

	result, err := importer.ParseFile(*file, importer.Config{
		Sheet:          *sheet,
		QuestionColumn: *qCol - 1,
		AnswerColumn:   *aCol - 1,
		StartRow:       *startRow,
	})
	if err != nil {
		log.Error("failed to read %s: %v", *file, err)
		os.Exit(1)
	}
	for _, msg := range result.Errors {
		log.Warn("%s", msg)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	deck, err := services.NewDeckService(sqlite.NewDeckRepository(database.DB)).
		ImportDeck(context.Background(), *title, *description, result.Cards)
	if err != nil {
		log.Error("import failed: %v", err)
		os.Exit(1)
	}

	log.Info("imported deck %d %q: %d cards, %d blank rows skipped, %d rows rejected",
		deck.ID, deck.Title, deck.CardCount, result.Skipped, len(result.Errors))
}
