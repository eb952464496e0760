/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/VastSea0/italiano-sub000/internal/adapter/dataset"
	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/config"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/database"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/server"
	"github.com/VastSea0/italiano-sub000/internal/usecase"
)

// dbInitCmd migrates the database then installs the vocabulary file.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Initialize the database and install the vocabulary",
	Long: `Create the progress and session tables, then download the vocabulary from
--url (or vocabulary.url) into vocabulary.path after checking that it decodes.
Without a URL the existing local file is validated instead. Downloads are
cached by URL; pass --no-cache to fetch again. Use --schema-only to skip the
vocabulary step. The sqlite3 driver needs a CGO_ENABLED=1 build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceURL, _ := cmd.Flags().GetString("url")
		output, _ := cmd.Flags().GetString("output")
		schemaOnly, _ := cmd.Flags().GetBool("schema-only")
		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := server.NewLogger(cfg)
		if err != nil {
			return err
		}
		if err := runMigrations(cmd.Context(), cfg, logger); err != nil {
			return err
		}
		if schemaOnly {
			return nil
		}

		if sourceURL == "" {
			sourceURL = cfg.Vocabulary.URL
		}
		if output == "" {
			output = cfg.Vocabulary.Path
		}
		var data entity.VocabularyDataset
		if sourceURL == "" {
			data, err = validateLocalVocabulary(output)
		} else {
			data, err = installVocabulary(cmd.Context(), logger, sourceURL, output, cacheDir, noCache)
		}
		if err != nil {
			return err
		}
		printDatasetSummary(cmd.OutOrStdout(), output, data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().String("url", "", "vocabulary download URL (.json, .xlsx or a .zip holding one; default vocabulary.url)")
	dbInitCmd.Flags().String("output", "", "where to install the vocabulary (default vocabulary.path)")
	dbInitCmd.Flags().Bool("schema-only", false, "only run the database migration")
	dbInitCmd.Flags().String("cache-dir", "", "download cache directory (default: user cache dir/italiano)")
	dbInitCmd.Flags().Bool("no-cache", false, "ignore the download cache and fetch again")
}

// runMigrations creates the progress and session tables on the target database.
func runMigrations(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	drv, cleanup, err := database.NewDriver(cfg, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := database.Migrate(ctx, drv); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("database migrated")
	return nil
}

func installVocabulary(ctx context.Context, logger *logrus.Logger, sourceURL, output, cacheDirFlag string, noCache bool) (entity.VocabularyDataset, error) {
	start := time.Now()
	cacheDir, cachePath, fromCache, err := prepareCachePath(sourceURL, cacheDirFlag, noCache)
	if err != nil {
		return entity.VocabularyDataset{}, err
	}
	if !fromCache {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return entity.VocabularyDataset{}, fmt.Errorf("create cache directory: %w", err)
		}
		logger.WithField("path", cachePath).Infof("downloading vocabulary from %s", sourceURL)
		if err := downloadFile(ctx, sourceURL, cachePath); err != nil {
			return entity.VocabularyDataset{}, err
		}
	} else {
		logger.WithField("path", cachePath).Info("using cached vocabulary")
	}

	payload, err := os.ReadFile(cachePath)
	if err != nil {
		return entity.VocabularyDataset{}, err
	}
	name := filepath.Base(output)
	if strings.EqualFold(filepath.Ext(cachePath), ".zip") {
		name, payload, err = readZipEntry(payload, isVocabularyFile)
		if err != nil {
			return entity.VocabularyDataset{}, err
		}
		if filepath.Ext(output) != filepath.Ext(name) {
			logger.Warnf("archive holds %s but output is %s", name, output)
		}
	}

	data, err := dataset.DecodeBytes(payload)
	if err != nil {
		return entity.VocabularyDataset{}, fmt.Errorf("decode %s: %w", name, err)
	}
	if data.Len() == 0 {
		return entity.VocabularyDataset{}, errors.New("vocabulary has no entries in any known category")
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return entity.VocabularyDataset{}, fmt.Errorf("create vocabulary directory: %w", err)
		}
	}
	if err := os.WriteFile(output, payload, 0o644); err != nil {
		return entity.VocabularyDataset{}, fmt.Errorf("write vocabulary: %w", err)
	}
	logger.WithField("elapsed", time.Since(start).String()).Infof("vocabulary installed at %s", output)
	return data, nil
}

func validateLocalVocabulary(path string) (entity.VocabularyDataset, error) {
	if path == "" {
		return entity.VocabularyDataset{}, errors.New("neither vocabulary.url nor vocabulary.path is set")
	}
	return (&dataset.FileSource{Path: path}).Load(context.Background())
}

func printDatasetSummary(out io.Writer, path string, data entity.VocabularyDataset) {
	deck := usecase.BuildDeck(data)
	counts := make(map[string]int)
	for _, item := range deck {
		counts[string(item.Category)]++
	}
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	fmt.Fprintf(out, "%s: %d entries, %d cards\n", path, data.Len(), len(deck))
	for _, category := range categories {
		fmt.Fprintf(out, "  %-12s %d\n", category, counts[category])
	}
}

// helpers
func downloadFile(ctx context.Context, sourceURL, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	// Write to a sibling temp file so an interrupted download never looks cached.
	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func isVocabularyFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".xlsx":
		return !strings.HasPrefix(filepath.Base(name), ".")
	}
	return false
}

// readZipEntry returns the first archive member accepted by match.
func readZipEntry(payload []byte, match func(string) bool) (string, []byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", nil, err
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !match(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", nil, err
		}
		return f.Name, data, nil
	}
	return "", nil, errors.New("no .json or .xlsx vocabulary found in archive")
}

// prepareCachePath decides the cache location and returns (cacheDir, cachePath, fromCache, error).
func prepareCachePath(sourceURL, cacheDirFlag string, noCache bool) (string, string, bool, error) {
	var base string
	if cacheDirFlag != "" {
		base = cacheDirFlag
	} else {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return "", "", false, fmt.Errorf("resolve user cache directory: %w", err)
		}
		base = filepath.Join(userCache, "italiano")
	}
	// stable filename from URL hash, keeping the extension for format detection
	h := crc32.ChecksumIEEE([]byte(sourceURL))
	name := fmt.Sprintf("vocabulary-%08x%s", h, urlExt(sourceURL))
	cachePath := filepath.Join(base, name)
	if !noCache {
		if st, err := os.Stat(cachePath); err == nil && st.Size() > 0 {
			return base, cachePath, true, nil
		}
	}
	return base, cachePath, false, nil
}

func urlExt(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".json", ".xlsx", ".zip":
		return ext
	}
	return ""
}
