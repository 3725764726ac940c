package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/AnyUserName/blurtune/internal/catalog"
	"github.com/AnyUserName/blurtune/internal/config"
	"github.com/AnyUserName/blurtune/internal/encoder"
	"github.com/AnyUserName/blurtune/internal/logging"
	"github.com/AnyUserName/blurtune/internal/preview"
)

var (
	version = "0.1.0"
	cfgFile string
	verbose bool

	cfg *config.Config
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "blurtune",
	Short: "Tune tiny blurred image placeholders",
	Long: `blurtune generates low-resolution placeholder images and embeds them
as base64 data URIs, ready to show while the full image loads.

Pick an image from the catalog, a format (jpeg, png, webp), encoder options
and a resize width; blurtune shows the resulting URI and its size. Run
"blurtune serve" for the interactive HTTP API or "blurtune batch" to
generate placeholders for a whole catalog.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { _ = log.Sync() },
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./config/blurtune.yaml if present)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.String("images", "", "image directory (catalog.dir)")
	pf.Int("workers", 0, "parallel workers, 0 = NumCPU (catalog.workers)")
	pf.String("cwebp", "", "cwebp binary (encoder.cwebp_path)")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"blurtune %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"images":  "catalog.dir",
	"workers": "catalog.workers",
	"cwebp":   "encoder.cwebp_path",
	"addr":    "server.addr",
}

// setup loads the configuration and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	v := config.NewViper(cfgFile)
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	if verbose {
		loaded.Log.Level = "debug"
	}
	logger, err := logging.New(loaded.Log)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	cfg, log = loaded, logger
	log.Debug("config loaded",
		zap.String("file", v.ConfigFileUsed()),
		zap.String("catalog", cfg.Catalog.Backend),
	)
	return nil
}

// bindFlags binds only the flags the user set, so unset flags do not
// shadow file and environment values.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// openCatalog opens the configured catalog and returns it with a
// printable location.
func openCatalog(ctx context.Context) (catalog.Catalog, string, error) {
	c := cfg.Catalog
	if c.Backend == "minio" {
		m, err := catalog.NewMinio(ctx, catalog.MinioConfig{
			Endpoint:  c.Minio.Endpoint,
			AccessKey: c.Minio.AccessKey,
			SecretKey: c.Minio.SecretKey,
			Bucket:    c.Minio.Bucket,
			Prefix:    c.Minio.Prefix,
			UseSSL:    c.Minio.UseSSL,
			Workers:   c.Workers,
		})
		if err != nil {
			return nil, "", err
		}
		return m, fmt.Sprintf("minio://%s/%s/%s", c.Minio.Endpoint, c.Minio.Bucket, c.Minio.Prefix), nil
	}
	return catalog.NewDir(c.Dir, c.Workers), c.Dir, nil
}

func newRegistry() *encoder.Registry {
	reg := encoder.NewRegistry(cfg.Encoder.CwebpPath)
	log.Debug("encoders", zap.Stringer("registry", reg))
	return reg
}

func newGenerator(src preview.Source, reg *encoder.Registry) *preview.Generator {
	return preview.NewGenerator(src, encoder.NewCodec(reg), log)
}
