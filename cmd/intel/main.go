// backend-go/cmd/intel/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/config"
	"github.com/andresuchdata/pharmastock/backend-go/internal/report"
	"github.com/andresuchdata/pharmastock/backend-go/internal/repository"
	"github.com/andresuchdata/pharmastock/backend-go/internal/service"
	"github.com/andresuchdata/pharmastock/backend-go/internal/storage"
	"github.com/andresuchdata/pharmastock/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// session holds what the subcommands share once Before has run.
type session struct {
	cfg     *config.Config
	db      *sqlx.DB
	service *service.IntelligenceService
}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string (defaults to the DB_* settings)",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newModelFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "model",
		Usage: "Forecast model: trend-average, linear-regression or ensemble-tree",
	}
}

// databaseURL builds a pgx connection URL from the DB_* settings.
func databaseURL(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

func (s *session) load(*cli.Context) error {
	s.cfg = config.Load()
	logger.Setup(s.cfg.Log.Level, s.cfg.Log.Format)
	return nil
}

func (s *session) open(c *cli.Context) error {
	dsn := c.String("db-url")
	if dsn == "" {
		dsn = databaseURL(s.cfg.Database)
	}

	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	s.service = service.NewIntelligenceService(repository.NewIntelligenceRepository(db), nil, nil, s.cfg.Intelligence)
	return nil
}

func (s *session) close(*cli.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *session) objectStorage() (*storage.MinioClient, error) {
	if !s.cfg.Storage.Enabled {
		return nil, fmt.Errorf("object storage is disabled (set STORAGE_ENABLED=true)")
	}
	return storage.NewMinioClient(s.cfg.Storage)
}

func (s *session) exporter(c *cli.Context) (*report.Exporter, error) {
	client, err := s.objectStorage()
	if err != nil {
		return nil, err
	}
	if err := client.EnsureBucket(c.Context); err != nil {
		return nil, err
	}
	return report.NewExporter(client, s.cfg.Storage.Prefix), nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	s := &session{}
	app := &cli.App{
		Name:   "intel",
		Usage:  "Run inventory forecasts, reorder analysis and expiry risk from the command line",
		Flags:  []cli.Flag{newDBURLFlag()},
		Before: s.load,
		After:  s.close,
		Commands: []*cli.Command{
			{
				Name:  "forecast",
				Usage: "Forecast daily consumption of one drug",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "drug", Usage: "Drug name", Required: true},
					&cli.IntFlag{Name: "days", Usage: "Forecast horizon in days", Value: 30},
					newModelFlag(),
				},
				Before: s.open,
				Action: s.runForecast,
			},
			{
				Name:  "backtest",
				Usage: "Score a model against the most recent days of history",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "drug", Usage: "Drug name", Required: true},
					&cli.IntFlag{Name: "holdout", Usage: "Days held out for scoring", Value: 7},
					newModelFlag(),
				},
				Before: s.open,
				Action: s.runBacktest,
			},
			{
				Name:  "reorder",
				Usage: "List reorder suggestions",
				Flags: []cli.Flag{
					newModelFlag(),
					&cli.BoolFlag{Name: "export", Usage: "Upload the report to object storage"},
				},
				Before: s.open,
				Action: s.runReorder,
			},
			{
				Name:  "expiry",
				Usage: "Assess expiry risk for one drug or the whole inventory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "drug", Usage: "Drug name (all drugs when empty)"},
					&cli.BoolFlag{Name: "export", Usage: "Upload the overview to object storage"},
				},
				Before: s.open,
				Action: s.runExpiry,
			},
			{
				Name:   "suppliers",
				Usage:  "Rank suppliers",
				Before: s.open,
				Action: s.runSuppliers,
			},
			{
				Name:  "reports",
				Usage: "Browse archived reports",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List archived reports",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "prefix", Usage: "Key prefix (defaults to STORAGE_PREFIX)"}},
						Action: s.runReportsList,
					},
					{
						Name:  "fetch",
						Usage: "Download an archived report",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "key", Usage: "Object key", Required: true},
							&cli.StringFlag{Name: "out", Usage: "Destination directory", Value: "."},
						},
						Action: s.runReportsFetch,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("intel failed")
	}
}

func (s *session) runForecast(c *cli.Context) error {
	rep, err := s.service.ForecastWithRecommendations(c.Context, c.String("drug"), c.Int("days"), c.String("model"))
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, rep)
}

func (s *session) runBacktest(c *cli.Context) error {
	metrics, err := s.service.Backtest(c.Context, c.String("drug"), c.Int("holdout"), c.String("model"))
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, metrics)
}

func (s *session) runReorder(c *cli.Context) error {
	suggestions, err := s.service.ReorderSuggestions(c.Context, c.String("model"))
	if err != nil {
		return err
	}

	if c.Bool("export") {
		exp, err := s.exporter(c)
		if err != nil {
			return err
		}
		key, err := exp.ExportReorderSuggestions(c.Context, suggestions)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "exported %d suggestions to %s\n", len(suggestions), key)
		return nil
	}

	return report.WriteReorderCSV(c.App.Writer, suggestions)
}

func (s *session) runExpiry(c *cli.Context) error {
	if drug := strings.TrimSpace(c.String("drug")); drug != "" {
		assessment, err := s.service.ExpiryRisk(c.Context, drug)
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, assessment)
	}

	assessments, err := s.service.ExpiryOverview(c.Context)
	if err != nil {
		return err
	}

	if c.Bool("export") {
		exp, err := s.exporter(c)
		if err != nil {
			return err
		}
		key, err := exp.ExportExpiryOverview(c.Context, assessments)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "exported %d assessments to %s\n", len(assessments), key)
		return nil
	}

	return report.WriteExpiryCSV(c.App.Writer, assessments)
}

func (s *session) runSuppliers(c *cli.Context) error {
	ranking, err := s.service.SupplierRanking(c.Context)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSUPPLIER\tSCORE")
	for i, r := range ranking {
		fmt.Fprintf(w, "%d\t%s\t%.3f\n", i+1, r.Supplier.Name, r.Score)
	}
	return w.Flush()
}

func (s *session) runReportsList(c *cli.Context) error {
	client, err := s.objectStorage()
	if err != nil {
		return err
	}

	prefix := c.String("prefix")
	if prefix == "" {
		prefix = s.cfg.Storage.Prefix
	}
	objects, err := client.ListObjects(c.Context, prefix)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	storage.NewestFirst(objects)
	fmt.Fprintln(w, "KEY\tSIZE\tMODIFIED")
	for _, o := range objects {
		fmt.Fprintf(w, "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.UTC().Format(time.RFC3339))
	}
	return w.Flush()
}

func (s *session) runReportsFetch(c *cli.Context) error {
	client, err := s.objectStorage()
	if err != nil {
		return err
	}

	key := c.String("key")
	dest := filepath.Join(c.String("out"), filepath.Base(key))
	if err := client.DownloadObject(c.Context, key, dest); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "saved %s\n", dest)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
