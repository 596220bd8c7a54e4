package service

import (
	"context"
	"errors"
	"time"

	"github.com/prohmpiriya/travel-booking/internal/domain"
	"github.com/prohmpiriya/travel-booking/internal/dto"
	"github.com/prohmpiriya/travel-booking/internal/report"
	"github.com/prohmpiriya/travel-booking/internal/repository"
	"github.com/prohmpiriya/travel-booking/pkg/logger"
	"github.com/prohmpiriya/travel-booking/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// errUnchanged tells mutate that nothing needs saving
var errUnchanged = errors.New("package unchanged")

// TravelService defines the interface for travel package business logic
type TravelService interface {
	// CreatePackage creates an empty travel package
	CreatePackage(ctx context.Context, req *dto.CreatePackageRequest) (*dto.PackageResponse, error)

	// GetPackage retrieves a travel package by ID
	GetPackage(ctx context.Context, packageID string) (*dto.PackageResponse, error)

	// ListPackages lists travel packages page by page
	ListPackages(ctx context.Context, req *dto.ListPackagesRequest) (*dto.PaginatedResponse, error)

	// AddDestination appends a destination to a package itinerary
	AddDestination(ctx context.Context, packageID string, req *dto.AddDestinationRequest) (*dto.DestinationResponse, error)

	// AddActivity adds an activity to a destination of a package
	AddActivity(ctx context.Context, packageID, destinationID string, req *dto.AddActivityRequest) (*dto.ActivityResponse, error)

	// RegisterPassenger adds a passenger to a package roster if there is room
	RegisterPassenger(ctx context.Context, packageID string, req *dto.RegisterPassengerRequest) (*dto.RegisterPassengerResponse, error)

	// SignUpForActivity enrolls a rostered passenger in an activity of the same package
	SignUpForActivity(ctx context.Context, packageID string, passengerNumber int, activityID string) (*dto.SignUpResponse, error)

	// GetItinerary renders the itinerary report
	GetItinerary(ctx context.Context, packageID string) (*dto.ReportResponse, error)

	// GetPassengerList renders the roster report
	GetPassengerList(ctx context.Context, packageID string) (*dto.ReportResponse, error)

	// GetAvailableActivities renders the activities that still have spaces
	GetAvailableActivities(ctx context.Context, packageID string) (*dto.ReportResponse, error)

	// GetPassengerDetails renders one passenger's details and enrollments
	GetPassengerDetails(ctx context.Context, packageID string, passengerNumber int) (*dto.ReportResponse, error)
}

// TravelServiceConfig contains configuration for the travel service
type TravelServiceConfig struct {
	// PublishTimeout bounds event publishing after a mutation is saved
	PublishTimeout time.Duration
	Logger         *logger.Logger
}

// travelService implements TravelService
type travelService struct {
	repo           repository.PackageRepository
	locker         repository.PackageLocker
	eventPublisher EventPublisher
	publishTimeout time.Duration
	log            *logger.Logger
}

// NewTravelService creates a new travel service
func NewTravelService(
	repo repository.PackageRepository,
	locker repository.PackageLocker,
	eventPublisher EventPublisher,
	cfg *TravelServiceConfig,
) TravelService {
	publishTimeout := 5 * time.Second
	log := logger.Get()
	if cfg != nil {
		if cfg.PublishTimeout > 0 {
			publishTimeout = cfg.PublishTimeout
		}
		if cfg.Logger != nil {
			log = cfg.Logger
		}
	}
	if locker == nil {
		locker = repository.NewLocalPackageLocker()
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &travelService{
		repo:           repo,
		locker:         locker,
		eventPublisher: eventPublisher,
		publishTimeout: publishTimeout,
		log:            log,
	}
}

// CreatePackage creates an empty travel package
func (s *travelService) CreatePackage(ctx context.Context, req *dto.CreatePackageRequest) (*dto.PackageResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.travel.create_package")
	defer span.End()

	pkg, err := domain.NewTravelPackage(req.Name, req.PassengerCapacity)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("package_id", pkg.ID))

	if err := s.repo.Create(ctx, pkg); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.log.Info("travel package created",
		zap.String("package_id", pkg.ID),
		zap.String("name", pkg.Name),
		zap.Int("passenger_capacity", pkg.PassengerCapacity),
	)
	span.SetStatus(codes.Ok, "")
	return dto.PackageFromDomain(pkg), nil
}

// GetPackage retrieves a travel package by ID
func (s *travelService) GetPackage(ctx context.Context, packageID string) (*dto.PackageResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.travel.get_package")
	defer span.End()

	pkg, err := s.load(ctx, packageID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.PackageFromDomain(pkg), nil
}

// ListPackages lists travel packages page by page
func (s *travelService) ListPackages(ctx context.Context, req *dto.ListPackagesRequest) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.travel.list_packages")
	defer span.End()

	if req == nil {
		req = &dto.ListPackagesRequest{}
	}
	req.SetDefaults()
	span.SetAttributes(attribute.Int("page", req.Page), attribute.Int("page_size", req.PageSize))

	packages, total, err := s.repo.List(ctx, req.PageSize, req.Offset())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	items := make([]dto.PackageSummaryResponse, 0, len(packages))
	for _, pkg := range packages {
		items = append(items, dto.PackageSummaryFromDomain(pkg))
	}

	span.SetStatus(codes.Ok, "")
	return dto.NewPaginatedResponse(items, req.Page, req.PageSize, total), nil
}

// AddDestination appends a destination to a package itinerary
func (s *travelService) AddDestination(ctx context.Context, packageID string, req *dto.AddDestinationRequest) (*dto.DestinationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.travel.add_destination")
	defer span.End()
	span.SetAttributes(attribute.String("package_id", packageID))

	dest, err := domain.NewDestination(req.Name)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	_, err = s.mutate(ctx, packageID, func(pkg *domain.TravelPackage) error {
		pkg.AddDestination(dest)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.log.Info("destination added",
		zap.String("package_id", packageID),
		zap.String("destination_id", dest.ID),
		zap.String("name", dest.Name),
	)
	span.SetStatus(codes.Ok, "")
	resp := dto.DestinationFromDomain(dest)
	return &resp, nil
}

// AddActivity adds an activity to a destination of a package
func (s *travelService) AddActivity(ctx context.Context, packageID, destinationID string, req *dto.AddActivityRequest) (*dto.ActivityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.travel.add_activity")
	defer span.End()
	span.SetAttributes(
		attribute.String("package_id", packageID),
		attribute.String("destination_id", destinationID),
	)

	activity, err := domain.NewActivity(req.Name, req.Description, req.Cost, req.Capacity)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	_, err = s.mutate(ctx, packageID, func(pkg *domain.TravelPackage) error {
		dest, ok := pkg.FindDestination(destinationID)
		if !ok {
			return domain.ErrDestinationNotFound
		}
		dest.AddActivity(activity)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.log.Info("activity added",
		zap.String("package_id", packageID),
		zap.String("destination_id", destinationID),
		zap.String("activity_id", activity.ID),
		zap.String("cost", activity.Cost.String()),
		zap.Int("capacity", activity.Capacity),
	)
	span.SetStatus(codes.Ok, "")
	resp := dto.ActivityFromDomain(activity)
	return &resp, nil
}

// RegisterPassenger adds a passenger to a package roster if there is room.
// A full roster is reported with Registered=false, not as an error.
func (s *travelService) RegisterPassenger(ctx context.Context, packageID string, req *dto.RegisterPassengerRequest) (*dto.RegisterPassengerResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.travel.register_passenger")
	defer span.End()
	span.SetAttributes(
		attribute.String("package_id", packageID),
		attribute.Int("passenger_number", req.Number),
	)

	tier, err := domain.ParseTier(req.Tier)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	passenger, err := domain.NewPassenger(req.Number, req.Name, tier, req.Balance)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	registered := false
	pkg, err := s.mutate(ctx, packageID, func(pkg *domain.TravelPackage) error {
		if _, exists := pkg.FindPassenger(passenger.Number); exists {
			return domain.ErrPassengerAlreadyRegistered
		}
		if !pkg.AddPassenger(passenger) {
			return errUnchanged
		}
		registered = true
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := &dto.RegisterPassengerResponse{
		Registered:        registered,
		PassengerCount:    len(pkg.Passengers()),
		PassengerCapacity: pkg.PassengerCapacity,
	}
	span.SetAttributes(attribute.Bool("registered", registered))

	if !registered {
		s.log.Info("passenger not registered, package full",
			zap.String("package_id", packageID),
			zap.Int("passenger_number", passenger.Number),
			zap.Int("passenger_capacity", pkg.PassengerCapacity),
		)
		span.SetStatus(codes.Ok, "")
		return resp, nil
	}

	p := dto.PassengerFromDomain(passenger)
	resp.Passenger = &p

	s.log.Info("passenger registered",
		zap.String("package_id", packageID),
		zap.Int("passenger_number", passenger.Number),
		zap.String("tier", passenger.Tier.String()),
	)
	s.publish(ctx, "passenger.registered", func(ctx context.Context) error {
		return s.eventPublisher.PublishPassengerRegistered(ctx, pkg, passenger)
	})

	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// SignUpForActivity enrolls a rostered passenger in an activity of the same package.
// Rule rejections come back as Enrolled=false with a reason; only unknown ids are errors.
func (s *travelService) SignUpForActivity(ctx context.Context, packageID string, passengerNumber int, activityID string) (*dto.SignUpResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.travel.sign_up_for_activity")
	defer span.End()
	span.SetAttributes(
		attribute.String("package_id", packageID),
		attribute.Int("passenger_number", passengerNumber),
		attribute.String("activity_id", activityID),
	)

	var (
		passenger *domain.Passenger
		activity  *domain.Activity
		resp      = &dto.SignUpResponse{ActivityID: activityID, PassengerNumber: passengerNumber}
	)

	pkg, err := s.mutate(ctx, packageID, func(pkg *domain.TravelPackage) error {
		p, ok := pkg.FindPassenger(passengerNumber)
		if !ok {
			return domain.ErrPassengerNotFound
		}
		a, _, ok := pkg.FindActivity(activityID)
		if !ok {
			return domain.ErrActivityNotFound
		}
		passenger, activity = p, a

		// balance is checked before capacity, so an unaffordable activity reports the balance
		reason := dto.ReasonActivityFull
		if !p.CanAfford(a) {
			reason = dto.ReasonInsufficientBalance
		}

		before := p.Balance()
		if !p.SignUpForActivity(a) {
			resp.Reason = reason
			return errUnchanged
		}
		resp.Enrolled = true
		resp.AmountCharged = before.Sub(p.Balance())
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp.Balance = passenger.Balance()
	resp.SpacesAvailable = activity.SpacesAvailable()
	span.SetAttributes(attribute.Bool("enrolled", resp.Enrolled), attribute.String("reason", resp.Reason))

	fields := []zap.Field{
		zap.String("package_id", pkg.ID),
		zap.Int("passenger_number", passengerNumber),
		zap.String("activity_id", activityID),
		zap.String("tier", passenger.Tier.String()),
	}
	if !resp.Enrolled {
		s.log.Info("activity sign-up rejected", append(fields, zap.String("reason", resp.Reason))...)
		span.SetStatus(codes.Ok, "")
		return resp, nil
	}

	s.log.Info("activity sign-up accepted", append(fields, zap.String("amount_charged", resp.AmountCharged.String()))...)
	s.publish(ctx, "activity.enrolled", func(ctx context.Context) error {
		return s.eventPublisher.PublishActivityEnrolled(ctx, pkg, passenger, activity, resp.AmountCharged)
	})

	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// GetItinerary renders the itinerary report
func (s *travelService) GetItinerary(ctx context.Context, packageID string) (*dto.ReportResponse, error) {
	return s.render(ctx, "service.travel.get_itinerary", packageID, func(pkg *domain.TravelPackage) ([]string, error) {
		return report.ItineraryLines(pkg), nil
	})
}

// GetPassengerList renders the roster report
func (s *travelService) GetPassengerList(ctx context.Context, packageID string) (*dto.ReportResponse, error) {
	return s.render(ctx, "service.travel.get_passenger_list", packageID, func(pkg *domain.TravelPackage) ([]string, error) {
		return report.PassengerListLines(pkg), nil
	})
}

// GetAvailableActivities renders the activities that still have spaces
func (s *travelService) GetAvailableActivities(ctx context.Context, packageID string) (*dto.ReportResponse, error) {
	return s.render(ctx, "service.travel.get_available_activities", packageID, func(pkg *domain.TravelPackage) ([]string, error) {
		return report.AvailableActivityLines(pkg.AvailableActivities()), nil
	})
}

// GetPassengerDetails renders one passenger's details and enrollments
func (s *travelService) GetPassengerDetails(ctx context.Context, packageID string, passengerNumber int) (*dto.ReportResponse, error) {
	return s.render(ctx, "service.travel.get_passenger_details", packageID, func(pkg *domain.TravelPackage) ([]string, error) {
		return report.PassengerDetailLines(pkg, passengerNumber)
	})
}

func (s *travelService) render(ctx context.Context, spanName, packageID string, lines func(*domain.TravelPackage) ([]string, error)) (*dto.ReportResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()
	span.SetAttributes(attribute.String("package_id", packageID))

	pkg, err := s.load(ctx, packageID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	out, err := lines(pkg)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.ReportResponse{Lines: out}, nil
}

func (s *travelService) load(ctx context.Context, packageID string) (*domain.TravelPackage, error) {
	if packageID == "" {
		return nil, domain.ErrInvalidPackageID
	}
	return s.repo.GetByID(ctx, packageID)
}

// mutate runs fn on a freshly loaded package while holding the package lock and saves the result.
// When fn returns errUnchanged the package is returned without saving.
func (s *travelService) mutate(ctx context.Context, packageID string, fn func(*domain.TravelPackage) error) (*domain.TravelPackage, error) {
	if packageID == "" {
		return nil, domain.ErrInvalidPackageID
	}

	unlock, err := s.locker.Lock(ctx, packageID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	pkg, err := s.repo.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}

	if err := fn(pkg); err != nil {
		if errors.Is(err, errUnchanged) {
			return pkg, nil
		}
		return nil, err
	}

	pkg.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, pkg); err != nil {
		s.log.Error("failed to save travel package", zap.String("package_id", packageID), zap.Error(err))
		return nil, err
	}
	return pkg, nil
}

// publish sends an event after the change is saved; failures are logged, never returned
func (s *travelService) publish(ctx context.Context, eventType string, send func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := send(ctx); err != nil {
		s.log.Error("failed to publish travel event",
			zap.String("event_type", eventType),
			zap.String("trace_id", telemetry.GetTraceID(ctx)),
			zap.Error(err),
		)
	}
}
