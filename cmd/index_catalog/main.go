package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/ebook-storefront/config"
	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	"github.com/oksasatya/ebook-storefront/internal/infrastructure/catalog"
	"github.com/oksasatya/ebook-storefront/internal/infrastructure/search"
	"github.com/oksasatya/ebook-storefront/pkg/helpers"
)

var (
	cfg    *config.Config
	logger *logrus.Logger

	uploadDir string
)

var rootCmd = &cobra.Command{
	Use:   "index_catalog",
	Short: "Load the built-in catalog into Elasticsearch and Cloud Storage",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		cfg = config.Load()
		logger = helpers.NewLogger(cfg.AppName+"-index-catalog", cfg.Env)
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index every catalog product into ES_PRODUCTS_INDEX",
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs := cfg.ESAddrs()
		if len(addrs) == 0 {
			return fmt.Errorf("ELASTICSEARCH_ADDRS is not set")
		}
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			return err
		}
		n, err := indexProducts(cmd.Context(), search.NewProductIndex(es, cfg.ESProductsIndex), catalog.NewStatic().List())
		logger.WithField("indexed", n).WithField("index", cfg.ESProductsIndex).Info("catalog indexed")
		return err
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload <dir>/<product id>.pdf to each product's content path in GCS_BUCKET",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is not set")
		}
		ctx := cmd.Context()
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		for _, p := range catalog.NewStatic().List() {
			path := filepath.Join(uploadDir, p.ID+".pdf")
			f, err := os.Open(path)
			if err != nil {
				logger.WithError(err).WithField("product_id", p.ID).Warn("skipping product without a local file")
				continue
			}
			c, cancel := context.WithTimeout(ctx, 2*time.Minute)
			err = helpers.UploadObject(c, client, cfg.GCSBucket, p.ContentRef, "application/pdf", f)
			cancel()
			_ = f.Close()
			if err != nil {
				return fmt.Errorf("upload %s: %w", p.ID, err)
			}
			logger.WithFields(logrus.Fields{"product_id": p.ID, "object": p.ContentRef}).Info("uploaded")
		}
		return nil
	},
}

type indexer interface {
	Put(ctx context.Context, p entity.Product) error
}

// indexProducts stops at the first failure and reports how many went in.
func indexProducts(ctx context.Context, idx indexer, products []entity.Product) (int, error) {
	for i, p := range products {
		if err := idx.Put(ctx, p); err != nil {
			return i, fmt.Errorf("index %s: %w", p.ID, err)
		}
	}
	return len(products), nil
}

func init() {
	uploadCmd.Flags().StringVar(&uploadDir, "dir", "./books", "directory holding <product id>.pdf files")
	rootCmd.AddCommand(indexCmd, uploadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
