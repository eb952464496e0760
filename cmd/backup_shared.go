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
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/VastSea0/italiano-sub000/internal/infrastructure/config"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/database"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/server"
	"github.com/VastSea0/italiano-sub000/internal/usecase/backup"
)

// openBackupService connects to the configured database and builds a backup
// service over it. With migrate set the schema is created first.
func openBackupService(ctx context.Context, cfg *config.Config, batchSize int, migrate bool) (*backup.Service, func(), error) {
	logger, err := server.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	drv, cleanup, err := database.NewDriver(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if migrate {
		if err := database.Migrate(ctx, drv); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	service, err := backup.NewService(drv, backup.WithBatchSize(batchSize))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create backup service: %w", err)
	}
	return service, cleanup, nil
}

// normalizeTables trims, lower-cases and drops blank table names. It returns
// nil when nothing is left so callers fall back to all tables.
func normalizeTables(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			result = append(result, strings.ToLower(name))
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func hasGzipSuffix(path string) bool {
	return path != "-" && strings.HasSuffix(strings.ToLower(path), ".gz")
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}
