package dto

import (
	"strings"
	"time"

	"github.com/prohmpiriya/travel-booking/internal/domain"
	"github.com/shopspring/decimal"
)

// Sign-up rejection reasons
const (
	ReasonActivityFull        = "activity_full"
	ReasonInsufficientBalance = "insufficient_balance"
)

// CreatePackageRequest represents the request to create a travel package
type CreatePackageRequest struct {
	Name              string `json:"name" binding:"required,max=255"`
	PassengerCapacity int    `json:"passenger_capacity"`
}

// Validate validates the CreatePackageRequest
func (r *CreatePackageRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Package name is required"
	}
	if r.PassengerCapacity < 0 {
		return false, "Passenger capacity cannot be negative"
	}
	return true, ""
}

// AddDestinationRequest represents the request to append a destination to an itinerary
type AddDestinationRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// Validate validates the AddDestinationRequest
func (r *AddDestinationRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Destination name is required"
	}
	return true, ""
}

// AddActivityRequest represents the request to add an activity to a destination
type AddActivityRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
	Capacity    int             `json:"capacity"`
}

// Validate validates the AddActivityRequest
func (r *AddActivityRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Activity name is required"
	}
	if r.Cost.IsNegative() {
		return false, "Cost cannot be negative"
	}
	if r.Capacity < 0 {
		return false, "Capacity cannot be negative"
	}
	return true, ""
}

// RegisterPassengerRequest represents the request to add a passenger to a package roster
type RegisterPassengerRequest struct {
	Number  int             `json:"number" binding:"required"`
	Name    string          `json:"name" binding:"required,max=255"`
	Tier    string          `json:"tier" binding:"required"`
	Balance decimal.Decimal `json:"balance"`
}

// Validate validates the RegisterPassengerRequest
func (r *RegisterPassengerRequest) Validate() (bool, string) {
	if r.Number <= 0 {
		return false, "Passenger number must be greater than zero"
	}
	if strings.TrimSpace(r.Name) == "" {
		return false, "Passenger name is required"
	}
	if _, err := domain.ParseTier(r.Tier); err != nil {
		return false, "Tier must be one of standard, gold, premium"
	}
	if r.Balance.IsNegative() {
		return false, "Balance cannot be negative"
	}
	return true, ""
}

// ListPackagesRequest carries paging for package listing
type ListPackagesRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// SetDefaults fills in paging defaults and clamps the page size
func (r *ListPackagesRequest) SetDefaults() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
	if r.PageSize > 100 {
		r.PageSize = 100
	}
}

// Offset returns the number of packages to skip
func (r *ListPackagesRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// ActivityResponse represents an activity in API responses
type ActivityResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Cost            decimal.Decimal `json:"cost"`
	Capacity        int             `json:"capacity"`
	Enrolled        int             `json:"enrolled"`
	SpacesAvailable int             `json:"spaces_available"`
}

// DestinationResponse represents a destination in API responses
type DestinationResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Activities []ActivityResponse `json:"activities"`
}

// EnrollmentResponse represents one activity a passenger holds a place in
type EnrollmentResponse struct {
	ActivityID string          `json:"activity_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	EnrolledAt time.Time       `json:"enrolled_at"`
}

// PassengerResponse represents a passenger in API responses
type PassengerResponse struct {
	Number      int                  `json:"number"`
	Name        string               `json:"name"`
	Tier        string               `json:"tier"`
	Balance     decimal.Decimal      `json:"balance"`
	Enrollments []EnrollmentResponse `json:"enrollments"`
}

// PackageResponse represents a travel package in API responses
type PackageResponse struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	PassengerCapacity int                   `json:"passenger_capacity"`
	PassengerCount    int                   `json:"passenger_count"`
	Destinations      []DestinationResponse `json:"destinations"`
	Passengers        []PassengerResponse   `json:"passengers"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// PackageSummaryResponse is the list view of a travel package
type PackageSummaryResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	PassengerCapacity int       `json:"passenger_capacity"`
	PassengerCount    int       `json:"passenger_count"`
	DestinationCount  int       `json:"destination_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// RegisterPassengerResponse reports whether the passenger made it onto the roster
type RegisterPassengerResponse struct {
	Registered        bool               `json:"registered"`
	Passenger         *PassengerResponse `json:"passenger,omitempty"`
	PassengerCount    int                `json:"passenger_count"`
	PassengerCapacity int                `json:"passenger_capacity"`
}

// SignUpResponse reports the outcome of an activity sign-up
type SignUpResponse struct {
	Enrolled        bool            `json:"enrolled"`
	Reason          string          `json:"reason,omitempty"`
	ActivityID      string          `json:"activity_id"`
	PassengerNumber int             `json:"passenger_number"`
	AmountCharged   decimal.Decimal `json:"amount_charged"`
	Balance         decimal.Decimal `json:"balance"`
	SpacesAvailable int             `json:"spaces_available"`
}

// ReportResponse carries printable report lines
type ReportResponse struct {
	Lines []string `json:"lines"`
}

// ActivityFromDomain converts a domain Activity to ActivityResponse
func ActivityFromDomain(a *domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:              a.ID,
		Name:            a.Name,
		Description:     a.Description,
		Cost:            a.Cost,
		Capacity:        a.Capacity,
		Enrolled:        a.EnrolledPassengers(),
		SpacesAvailable: a.SpacesAvailable(),
	}
}

// DestinationFromDomain converts a domain Destination to DestinationResponse
func DestinationFromDomain(d *domain.Destination) DestinationResponse {
	activities := d.Activities()
	resp := DestinationResponse{
		ID:         d.ID,
		Name:       d.Name,
		Activities: make([]ActivityResponse, 0, len(activities)),
	}
	for _, a := range activities {
		resp.Activities = append(resp.Activities, ActivityFromDomain(a))
	}
	return resp
}

// PassengerFromDomain converts a domain Passenger to PassengerResponse
func PassengerFromDomain(p *domain.Passenger) PassengerResponse {
	enrollments := p.Enrollments()
	resp := PassengerResponse{
		Number:      p.Number,
		Name:        p.Name,
		Tier:        p.Tier.String(),
		Balance:     p.Balance(),
		Enrollments: make([]EnrollmentResponse, 0, len(enrollments)),
	}
	for _, e := range enrollments {
		resp.Enrollments = append(resp.Enrollments, EnrollmentResponse{
			ActivityID: e.ActivityID,
			AmountPaid: e.AmountPaid,
			EnrolledAt: e.EnrolledAt,
		})
	}
	return resp
}

// PackageFromDomain converts a domain TravelPackage to PackageResponse
func PackageFromDomain(pkg *domain.TravelPackage) *PackageResponse {
	itinerary := pkg.Itinerary()
	passengers := pkg.Passengers()
	resp := &PackageResponse{
		ID:                pkg.ID,
		Name:              pkg.Name,
		PassengerCapacity: pkg.PassengerCapacity,
		PassengerCount:    len(passengers),
		Destinations:      make([]DestinationResponse, 0, len(itinerary)),
		Passengers:        make([]PassengerResponse, 0, len(passengers)),
		CreatedAt:         pkg.CreatedAt,
		UpdatedAt:         pkg.UpdatedAt,
	}
	for _, d := range itinerary {
		resp.Destinations = append(resp.Destinations, DestinationFromDomain(d))
	}
	for _, p := range passengers {
		resp.Passengers = append(resp.Passengers, PassengerFromDomain(p))
	}
	return resp
}

// PackageSummaryFromDomain converts a domain TravelPackage to its list view
func PackageSummaryFromDomain(pkg *domain.TravelPackage) PackageSummaryResponse {
	return PackageSummaryResponse{
		ID:                pkg.ID,
		Name:              pkg.Name,
		PassengerCapacity: pkg.PassengerCapacity,
		PassengerCount:    len(pkg.Passengers()),
		DestinationCount:  len(pkg.Itinerary()),
		CreatedAt:         pkg.CreatedAt,
	}
}

// PaginatedResponse wraps one page of a listing
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// NewPaginatedResponse computes the page count for a listing
func NewPaginatedResponse(data interface{}, page, pageSize, total int) *PaginatedResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return &PaginatedResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
