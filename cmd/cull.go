package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/backend"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/config"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/constants"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/database/postgres"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/fingerprint"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/workflow"
)

var cullCmd = &cobra.Command{
	Use:   "cull [directory]",
	Short: "Run a one-shot analysis batch over a local directory",
	Long: `Cull analyzes every supported image in a directory through the
Ailbums AI backend and prints the scores, tags and flags per photo.
With DATABASE_URL set, the returned embeddings are stored in the
PostgreSQL cache so the web workspace can run duplicate search on the
same files without re-analyzing them.`,
	Args: cobra.ExactArgs(1),
	RunE: runCull,
}

func init() {
	rootCmd.AddCommand(cullCmd)

	cullCmd.Flags().String("mode", "fast", "Culling mode: fast or deep")
	cullCmd.Flags().String("event", "", "Event type for context-aware scoring (e.g. wedding)")
	cullCmd.Flags().String("user", "", "User identity submitted to the backend")
	cullCmd.Flags().Int("limit", 0, "Limit number of photos to process (0 = no limit)")
	cullCmd.Flags().Bool("no-cache", false, "Skip writing embeddings to the PostgreSQL cache")
}

// collectPhotos builds the photo list from the directory's supported images,
// sorted by filename. RAW files are skipped; the backend needs a rendered
// image.
func collectPhotos(dir string, limit int) ([]album.Photo, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var photos []album.Photo
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Name())), ".")
		if !slices.Contains(constants.ImageExtensions, ext) {
			continue
		}
		photos = append(photos, album.Photo{
			ID:           uuid.NewString(),
			Filename:     entry.Name(),
			OriginalPath: filepath.Join(dir, entry.Name()),
		})
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].Filename < photos[j].Filename })

	if limit > 0 && len(photos) > limit {
		photos = photos[:limit]
	}
	return photos, nil
}

func newCullProgressBar(count int) *progressbar.ProgressBar {
	return progressbar.NewOptions(count,
		progressbar.OptionSetDescription("Analyzing photos"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}

// cacheEmbeddings stores the analysis signatures so later duplicate searches
// can reuse them.
func cacheEmbeddings(ctx context.Context, repo *postgres.EmbeddingRepository, photos []album.Photo, model string) (int, error) {
	stored := 0
	for _, p := range photos {
		if len(p.Embedding) == 0 {
			continue
		}
		if err := repo.Save(ctx, p.Filename, p.Embedding, p.PHash, model); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

func runCull(cmd *cobra.Command, args []string) error {
	dir := args[0]
	cfg := config.Load()

	mode := workflow.Mode(mustGetString(cmd, "mode"))
	if mode != workflow.ModeFast && mode != workflow.ModeDeep {
		return fmt.Errorf("unknown mode %q (supported: fast, deep)", mode)
	}
	eventType := mustGetString(cmd, "event")
	userID := mustGetString(cmd, "user")
	limit := mustGetInt(cmd, "limit")
	noCache := mustGetBool(cmd, "no-cache")

	if eventType != "" && !cfg.Events.Known(eventType) {
		return fmt.Errorf("unknown event type %q (configured: %s)", eventType, strings.Join(cfg.Events.Slugs(), ", "))
	}
	if cfg.Backend.URL == "" {
		return errors.New("AILBUMS_BACKEND_URL environment variable is required")
	}
	client, err := backend.New(cfg.Backend.URL)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	photos, err := collectPhotos(dir, limit)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		return fmt.Errorf("no supported images found in %s", dir)
	}

	// Local perceptual hashes go along so the backend can skip recomputing.
	for i := range photos {
		data, err := os.ReadFile(photos[i].OriginalPath)
		if err != nil {
			continue
		}
		if hashes, err := fingerprint.Compute(data); err == nil {
			photos[i].PHash = hashes.PHash
		}
	}

	fmt.Printf("Culling %d photos from %s (mode: %s)\n", len(photos), dir, mode)
	if eventType != "" {
		fmt.Printf("Event context: %s\n", eventType)
	}
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal...")
		cancel()
	}()

	bar := newCullProgressBar(len(photos))
	final, err := client.Analyze(ctx, photos, backend.AnalyzeOptions{
		Mode:      mode,
		UserID:    userID,
		EventType: eventType,
		OnProgress: func(processed int, filename string, updated *album.Photo) {
			_ = bar.Add(1)
		},
	})
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("culling failed: %w", err)
	}

	printCullResults(final)

	if !noCache && cfg.Database.URL != "" {
		pool, err := postgres.Connect(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer pool.Close()

		repo := postgres.NewEmbeddingRepository(pool)
		stored, err := cacheEmbeddings(context.Background(), repo, final, string(mode))
		if err != nil {
			return fmt.Errorf("failed to cache embeddings: %w", err)
		}
		fmt.Printf("\nCached %d embeddings in PostgreSQL\n", stored)
	}

	return nil
}

func printCullResults(photos []album.Photo) {
	best := 0
	flagged := 0
	for _, p := range photos {
		if p.AIScore >= 7 {
			best++
		}
		if len(p.Flags) > 0 {
			flagged++
		}
	}

	fmt.Printf("Analyzed: %d photos (%d high-score, %d flagged)\n\n", len(photos), best, flagged)
	for _, p := range photos {
		line := fmt.Sprintf("  %-40s %4.1f", p.Filename, p.AIScore)
		if tags := p.Tags.Values(); len(tags) > 0 {
			line += "  " + strings.Join(tags, ",")
		}
		if len(p.Flags) > 0 {
			line += "  [" + strings.Join(p.Flags, ",") + "]"
		}
		fmt.Println(line)
	}
}
