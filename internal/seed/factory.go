// Package seed loads reference data and demo content into the marketplace
// database. Defaults is safe to run on every deploy; Seed is for development
// and review environments.
package seed

import (
	"fmt"
	"strings"
	"time"

	"bizrwanda/internal/listing"
	"bizrwanda/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every generated account.
const DemoPassword = "Kigali#Market2026"

var rwandaLocations = []string{
	"Kigali", "Huye", "Musanze", "Rubavu", "Rwamagana", "Muhanga",
	"Nyagatare", "Rusizi", "Karongi", "Nyanza",
}

var industries = []string{
	"Technology", "Finance & Banking", "Healthcare", "Education",
	"Agriculture", "Construction", "Hospitality & Tourism", "NGO & Development",
}

var jobTitles = []string{
	"Backend Engineer", "Accountant", "Agronomist", "Community Health Worker",
	"Site Engineer", "Sales Representative", "Front Desk Officer",
	"Data Analyst", "Procurement Officer", "Secondary School Teacher",
}

// Factory builds demo entities. It never touches the database; Seed decides
// what to persist.
type Factory struct {
	faker *gofakeit.Faker
	now   time.Time
	// synthetic ID counter used in DryRun mode
	nextID uint
}

// NewFactory returns a Factory. A zero seed picks a time based one.
func NewFactory(seed int64, now time.Time) *Factory {
	if seed == 0 {
		seed = now.UnixNano()
	}
	return &Factory{faker: gofakeit.New(seed), now: now, nextID: 1000}
}

func (f *Factory) syntheticID() uint {
	f.nextID++
	return f.nextID
}

func (f *Factory) location() string {
	return f.faker.RandomString(rwandaLocations)
}

func (f *Factory) futureDate(minDays, maxDays int) string {
	days := f.faker.Number(minDays, maxDays)
	return f.now.AddDate(0, 0, days).Format("2006-01-02")
}

// User builds an account with the demo password hashed at cost.
func (f *Factory) User(role models.Role, cost int) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	first, last := f.faker.FirstName(), f.faker.LastName()
	email := fmt.Sprintf("%s.%s.%d@example.rw",
		slug(first), slug(last), f.faker.Number(100, 99999))
	return &models.User{
		Email:        email,
		Role:         role,
		FullName:     first + " " + last,
		Password:     string(hash),
		AuthProvider: models.AuthProviderLocal,
	}, nil
}

// Company builds an organisation profile owned by userID.
func (f *Factory) Company(userID uint) *models.Company {
	name := f.faker.Company()
	return &models.Company{
		Name:          name,
		UserID:        userID,
		Industry:      f.faker.RandomString(industries),
		Location:      f.location(),
		Website:       fmt.Sprintf("https://%s.rw", slug(name)),
		EmployeeCount: f.faker.RandomString([]string{"1-10", "11-50", "51-200", "201-500"}),
		Founded:       fmt.Sprintf("%d", f.faker.Number(1995, f.now.Year())),
		Description:   f.faker.Paragraph(1, 3, 12, " "),
	}
}

// Profile builds a job seeker profile for userID.
func (f *Factory) Profile(userID uint) *models.JobSeekerProfile {
	return &models.JobSeekerProfile{
		UserID:          userID,
		Title:           f.faker.RandomString(jobTitles),
		Bio:             f.faker.Paragraph(1, 2, 10, " "),
		Skills:          strings.Join([]string{f.faker.HackerNoun(), f.faker.JobDescriptor(), f.faker.BuzzWord()}, ", "),
		Location:        f.location(),
		ExperienceYears: f.faker.Number(0, 15),
	}
}

// ListingForm builds a form that passes listing.Validate for postType. A
// non-nil company makes it a company posting; otherwise it is posted as an
// individual.
func (f *Factory) ListingForm(postType models.PostType, company *models.Company) listing.Form {
	form := listing.Form{
		PostType:    string(postType),
		Location:    f.location(),
		Description: f.faker.Paragraph(2, 3, 12, " "),
	}
	if company != nil {
		id := company.ID
		form.OwnerType = listing.OwnerCompany
		form.CompanyID = &id
	} else {
		form.OwnerType = listing.OwnerIndividual
		form.IndividualName = f.faker.Name()
		form.IndividualContact = fmt.Sprintf("+2507%08d", f.faker.Number(0, 99999999))
	}

	switch postType {
	case models.PostTypeAuction:
		form.Title = fmt.Sprintf("Public auction of %s", f.faker.RandomString([]string{"used vehicles", "office furniture", "farm equipment", "IT equipment"}))
		form.Category = "Auctions"
		form.AuctionDate = f.futureDate(7, 45)
		form.AuctionTime = fmt.Sprintf("%02d:%02d", f.faker.Number(8, 16), f.faker.RandomInt([]int{0, 15, 30, 45}))
		form.ViewingDates = "Two days before the auction, 9:00 to 16:00"
		form.AuctionItems = strings.Join([]string{f.faker.CarModel(), f.faker.CarModel(), f.faker.CarModel()}, "\n")
		form.AuctionRequirements = "Bidders bring a national ID and a 10% deposit"
	case models.PostTypeTender:
		form.Title = fmt.Sprintf("Tender for supply of %s", f.faker.RandomString([]string{"office stationery", "laboratory equipment", "construction materials", "catering services"}))
		form.Category = "Tenders"
		form.TenderDeadline = f.futureDate(10, 60)
		form.TenderRequirements = "Valid RDB registration certificate and tax clearance"
		form.TenderDocuments = "Available at the procurement office"
	case models.PostTypeAnnouncement:
		form.Title = f.faker.Sentence(5)
		form.Category = "Announcements"
		form.AnnouncementType = f.faker.RandomString([]string{"event", "notice", "training", "opening"})
	default:
		form.Title = f.faker.RandomString(jobTitles)
		form.Category = f.faker.RandomString(industries)
		form.Type = f.faker.RandomString([]string{"full_time", "part_time", "contract", "internship"})
		form.ExperienceLevel = f.faker.RandomString([]string{"entry", "mid", "senior"})
		form.Salary = fmt.Sprintf("%d-%d", f.faker.Number(2, 5)*100000, f.faker.Number(6, 12)*100000)
		form.Currency = "RWF"
		form.Requirements = f.faker.Paragraph(1, 2, 10, " ")
		form.Responsibilities = f.faker.Paragraph(1, 2, 10, " ")
	}
	return form
}

// Listing validates a generated form and applies it to a new row posted by
// userID. Demo listings are approved and active.
func (f *Factory) Listing(postType models.PostType, userID uint, company *models.Company) (*models.Listing, error) {
	draft, err := listing.Validate(f.ListingForm(postType, company))
	if err != nil {
		return nil, fmt.Errorf("generated %s form is invalid: %w", postType, err)
	}
	row := &models.Listing{
		Status:     models.ListingStatusApproved,
		IsActive:   true,
		PostedByID: userID,
		CreatedAt:  f.now.Add(-time.Duration(f.faker.Number(1, 30*24)) * time.Hour),
	}
	if err := draft.Apply(row); err != nil {
		return nil, err
	}
	if company != nil {
		row.CompanyName = company.Name
	}
	return row, nil
}

// Application builds a submission from userID to jobID.
func (f *Factory) Application(userID, jobID uint) *models.Application {
	return &models.Application{
		UserID:      userID,
		JobID:       jobID,
		Status:      models.ApplicationStatus(f.faker.RandomString(applicationStatusNames())),
		CoverLetter: f.faker.Paragraph(1, 3, 12, "\n"),
	}
}

func applicationStatusNames() []string {
	names := make([]string, len(models.ApplicationStatuses))
	for i, s := range models.ApplicationStatuses {
		names[i] = string(s)
	}
	return names
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}
