package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/prohmpiriya/travel-booking/internal/di"
	"github.com/prohmpiriya/travel-booking/internal/dto"
	"github.com/prohmpiriya/travel-booking/internal/report"
	"github.com/prohmpiriya/travel-booking/internal/service"
	"github.com/prohmpiriya/travel-booking/pkg/config"
	"github.com/prohmpiriya/travel-booking/pkg/logger"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	reportItinerary  = "itinerary"
	reportPassengers = "passengers"
	reportAvailable  = "available"
	reportPassenger  = "passenger"
	reportAll        = "all"
)

type options struct {
	packageID string
	report    string
	passenger int
}

func main() {
	opts := options{}
	flags := pflag.NewFlagSet("itinerary-report", pflag.ExitOnError)
	flags.StringVarP(&opts.packageID, "package", "p", "", "travel package id; lists packages when empty")
	flags.StringVarP(&opts.report, "report", "r", reportAll, "itinerary, passengers, available, passenger or all")
	flags.IntVarP(&opts.passenger, "passenger", "n", 0, "passenger number for the passenger report")
	_ = flags.Parse(os.Args[1:])

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: "itinerary-report",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, db, err := di.NewPackageRepository(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("Storage initialization failed", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	} else {
		appLog.Warn("memory storage has no packages outside the running server; set STORAGE_DRIVER=postgres")
	}

	svc := service.NewTravelService(repo, nil, nil, &service.TravelServiceConfig{Logger: appLog})
	if err := run(ctx, svc, opts, os.Stdout); err != nil {
		appLog.Fatal("Report failed", zap.Error(err))
	}
}

func run(ctx context.Context, svc service.TravelService, opts options, w io.Writer) error {
	if opts.packageID == "" {
		return listPackages(ctx, svc, w)
	}

	var fetchers []func() (*dto.ReportResponse, error)
	itinerary := func() (*dto.ReportResponse, error) { return svc.GetItinerary(ctx, opts.packageID) }
	passengers := func() (*dto.ReportResponse, error) { return svc.GetPassengerList(ctx, opts.packageID) }
	available := func() (*dto.ReportResponse, error) { return svc.GetAvailableActivities(ctx, opts.packageID) }
	passenger := func() (*dto.ReportResponse, error) {
		return svc.GetPassengerDetails(ctx, opts.packageID, opts.passenger)
	}

	switch opts.report {
	case reportItinerary:
		fetchers = append(fetchers, itinerary)
	case reportPassengers:
		fetchers = append(fetchers, passengers)
	case reportAvailable:
		fetchers = append(fetchers, available)
	case reportPassenger:
		if opts.passenger <= 0 {
			return fmt.Errorf("--passenger is required for the passenger report")
		}
		fetchers = append(fetchers, passenger)
	case reportAll:
		fetchers = append(fetchers, itinerary, passengers, available)
		if opts.passenger > 0 {
			fetchers = append(fetchers, passenger)
		}
	default:
		return fmt.Errorf("unknown report %q", opts.report)
	}

	for i, fetch := range fetchers {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		resp, err := fetch()
		if err != nil {
			return err
		}
		if err := report.Write(w, resp.Lines); err != nil {
			return err
		}
	}
	return nil
}

func listPackages(ctx context.Context, svc service.TravelService, w io.Writer) error {
	req := &dto.ListPackagesRequest{Page: 1, PageSize: 100}
	for {
		page, err := svc.ListPackages(ctx, req)
		if err != nil {
			return err
		}
		items, _ := page.Data.([]dto.PackageSummaryResponse)
		for _, p := range items {
			if _, err := fmt.Fprintf(w, "%s  %s  (%d/%d passengers, %d destinations)\n",
				p.ID, p.Name, p.PassengerCount, p.PassengerCapacity, p.DestinationCount); err != nil {
				return err
			}
		}
		if page.Page >= page.TotalPages {
			return nil
		}
		req.Page++
	}
}
