package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/floai/flo-assistant/internal/knowledge"
	"github.com/floai/flo-assistant/internal/logger"
	"github.com/floai/flo-assistant/internal/storage"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var deletePrompt = promptui.Select{
	Label: "Delete this document?",
	Items: []string{PromptYes, PromptNo},
}

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the assistant's knowledge base",
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all knowledge base documents",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()

		curator, logger := mustCurator(ctx, false)

		documents, err := curator.ListAll(ctx)
		if err != nil {
			logger.Fatal("listing documents", zap.Error(err))
		}

		if len(documents) == 0 {
			fmt.Println("the knowledge base is empty")
			return
		}

		for _, doc := range documents {
			category := doc.Category
			if category == "" {
				category = "-"
			}
			fmt.Printf("%s  [%s]  %s\n", doc.ID, category, doc.Title)
		}
	},
}

var knowledgeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a document to the knowledge base",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()

		curator, logger := mustCurator(ctx, true)

		title, _ := cmd.Flags().GetString("title")
		content, _ := cmd.Flags().GetString("content")
		contentFile, _ := cmd.Flags().GetString("content-file")
		category, _ := cmd.Flags().GetString("category")

		if contentFile != "" {
			data, err := os.ReadFile(contentFile)
			if err != nil {
				logger.Fatal("reading content file", zap.Error(err), zap.String("file", contentFile))
			}
			content = string(data)
		}

		if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
			logger.Fatal("title and content are required")
		}

		doc, err := curator.Store(ctx, title, content, category, nil)
		if err != nil {
			logger.Fatal("storing the document", zap.Error(err))
		}

		fmt.Printf("stored document %s\n", doc.ID)
	},
}

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge base by semantic similarity",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		store, embedder, logger := knowledgeDeps(ctx, true)
		retriever := knowledge.NewRetriever(store, embedder, logger)

		limit, _ := cmd.Flags().GetInt("limit")
		category, _ := cmd.Flags().GetString("category")

		results, err := retriever.Retrieve(ctx, args[0], limit, category)
		if err != nil {
			logger.Fatal("searching the knowledge base", zap.Error(err))
		}

		if len(results) == 0 {
			fmt.Println("no matching documents")
			return
		}

		for _, doc := range results {
			category := doc.Category
			if category == "" {
				category = "-"
			}
			fmt.Printf("%s  [%s]  %s\n", doc.ID, category, doc.Title)
		}
	},
}

var knowledgeUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a knowledge base document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		curator, logger := mustCurator(ctx, true)

		// Only flags the user actually set become part of the update, so
		// untouched fields keep their stored values.
		var title, content, category *string
		for flag, target := range map[string]**string{
			"title":    &title,
			"content":  &content,
			"category": &category,
		} {
			if cmd.Flags().Changed(flag) {
				value, _ := cmd.Flags().GetString(flag)
				*target = &value
			}
		}

		if title == nil && content == nil && category == nil {
			logger.Fatal("nothing to update", zap.String("hint", "pass at least one of --title, --content, --category"))
		}

		doc, err := curator.Update(ctx, args[0], title, content, category)
		if err != nil {
			logger.Fatal("updating the document", zap.Error(err), zap.String("id", args[0]))
		}

		fmt.Printf("updated document %s\n", doc.ID)
	},
}

var knowledgeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a knowledge base document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		curator, logger := mustCurator(ctx, false)

		if cmd.Flag("yes").Value.String() == "false" {
			_, answer, err := deletePrompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
			if answer != PromptYes {
				fmt.Println("aborted")
				return
			}
		}

		if err := curator.Delete(ctx, args[0]); err != nil {
			logger.Fatal("deleting the document", zap.Error(err), zap.String("id", args[0]))
		}

		fmt.Printf("deleted document %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(knowledgeCmd)

	knowledgeCmd.AddCommand(knowledgeListCmd)
	knowledgeCmd.AddCommand(knowledgeAddCmd)
	knowledgeCmd.AddCommand(knowledgeSearchCmd)
	knowledgeCmd.AddCommand(knowledgeUpdateCmd)
	knowledgeCmd.AddCommand(knowledgeDeleteCmd)

	knowledgeAddCmd.Flags().StringP("title", "t", "", "document title")
	knowledgeAddCmd.Flags().StringP("content", "c", "", "document content")
	knowledgeAddCmd.Flags().String("content-file", "", "read the document content from a file")
	knowledgeAddCmd.Flags().String("category", "", "document category")

	knowledgeSearchCmd.Flags().IntP("limit", "l", knowledge.DefaultLimit, "maximum number of results")
	knowledgeSearchCmd.Flags().String("category", "", "restrict the search to one category")

	knowledgeUpdateCmd.Flags().StringP("title", "t", "", "new document title")
	knowledgeUpdateCmd.Flags().StringP("content", "c", "", "new document content, triggers re-embedding")
	knowledgeUpdateCmd.Flags().String("category", "", "new document category")

	knowledgeDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

// knowledgeDeps builds the shared pieces behind the knowledge commands. The
// embedding provider is only constructed for commands that embed text, so
// listing and deleting work without provider credentials.
func knowledgeDeps(ctx context.Context, needEmbedder bool) (*storage.SQLiteStore, knowledge.Embedder, *zap.Logger) {
	logr, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logr.Fatal("getting a config", zap.Error(err))
	}

	store, err := storage.NewSQLiteStore(config.Database.Path, logr)
	if err != nil {
		logr.Fatal("opening the knowledge database", zap.Error(err), zap.String("path", config.Database.Path))
	}

	var embedder knowledge.Embedder
	if needEmbedder {
		embedder, err = newEmbedder(ctx, config.Embedding, logr)
		if err != nil {
			logr.Fatal("building the embedding provider", zap.Error(err))
		}
	}

	return store, embedder, logr
}

func mustCurator(ctx context.Context, needEmbedder bool) (*knowledge.Curator, *zap.Logger) {
	store, embedder, logr := knowledgeDeps(ctx, needEmbedder)
	return knowledge.NewCurator(store, embedder, logr), logr
}
