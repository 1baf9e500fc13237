package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"supplier-pricing-backend/internal/config"
	"supplier-pricing-backend/internal/logging"
	"supplier-pricing-backend/internal/models"
	"supplier-pricing-backend/internal/services/pricing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment variables that back CLI flags.
const EnvPrefix = "PRICESHEET"

// app carries state shared by the subcommands.
type app struct {
	v   *viper.Viper
	log zerolog.Logger
	svc *pricing.Service
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	a := &app{v: v, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "pricesheet",
		Short: "Build bidding sheets, catalogs and price QC reports from CSV files",
		Long: `pricesheet turns supplier cost sheets into a best-price bidding sheet,
projects a bidding sheet onto the catalog layout, and reconciles two
price sheets against each other.

Output goes to stdout as CSV unless -o names a file; a .xlsx extension
writes a colour-coded workbook.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", logging.FormatConsole, "log format (console, json)")
	mustBind(v, "log_level", root.PersistentFlags().Lookup("log-level"))
	mustBind(v, "log_format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(
		newBidCommand(a),
		newCatalogCommand(a),
		newQCCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	config.LoadEnvFiles()

	a.log = logging.NewWithWriter(cmd.ErrOrStderr(), a.v.GetString("log_level"), a.v.GetString("log_format"))
	a.svc = pricing.NewService(pricing.Options{
		BidMarkup:     models.DefaultBidMarkup,
		CatalogMarkup: models.DefaultCatalogMarkup,
	}, a.log)
	return nil
}

// markup reads key through viper so PRICESHEET_<KEY> can stand in for the flag.
func (a *app) markup(key string) (*float64, error) {
	m, err := models.ParseMarkup("markup", a.v.GetString(key))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind %s flag: %v", key, err))
	}
}
