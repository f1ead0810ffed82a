package cli

import (
	"context"
	_ "embed"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eleven-am/hiretrack/internal/applications"
	"github.com/eleven-am/hiretrack/internal/auth"
	"github.com/eleven-am/hiretrack/internal/models"
	"github.com/eleven-am/hiretrack/internal/users"
)

//go:embed fixtures/demo.yaml
var demoFixture []byte

var fixtureFile string

type seedUser struct {
	Email     string  `yaml:"email"`
	Password  string  `yaml:"password"`
	FirstName *string `yaml:"firstName"`
	LastName  *string `yaml:"lastName"`
}

type seedApplication struct {
	JobTitle        string  `yaml:"jobTitle"`
	Company         string  `yaml:"company"`
	Location        *string `yaml:"location"`
	Salary          *string `yaml:"salary"`
	JobURL          *string `yaml:"jobUrl"`
	Notes           *string `yaml:"notes"`
	Status          *string `yaml:"status"`
	AppliedAt       *string `yaml:"appliedAt"`
	InterviewDate   *string `yaml:"interviewDate"`
	OfferReceivedAt *string `yaml:"offerReceivedAt"`
	RejectedAt      *string `yaml:"rejectedAt"`
}

func (a seedApplication) params() applications.Params {
	return applications.Params{
		JobTitle:        &a.JobTitle,
		Company:         &a.Company,
		Location:        a.Location,
		Salary:          a.Salary,
		JobURL:          a.JobURL,
		Notes:           a.Notes,
		Status:          a.Status,
		AppliedAt:       a.AppliedAt,
		InterviewDate:   a.InterviewDate,
		OfferReceivedAt: a.OfferReceivedAt,
		RejectedAt:      a.RejectedAt,
	}
}

type fixture struct {
	User         seedUser          `yaml:"user"`
	Applications []seedApplication `yaml:"applications"`
}

func parseFixture(data []byte) (*fixture, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.NotValidf("fixture: %v", err)
	}
	if f.User.Email == "" || f.User.Password == "" {
		return nil, errors.NotValidf("fixture without user email and password")
	}
	return &f, nil
}

// userUpserter is satisfied by users.Store.
type userUpserter interface {
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
}

// applicationCreator is satisfied by *applications.Service.
type applicationCreator interface {
	Create(ctx context.Context, ownerID string, params applications.Params) (*models.Application, error)
}

// seed upserts the fixture user, refreshing its password and names, and
// adds the fixture applications to it.
func seed(ctx context.Context, f *fixture, store userUpserter, apps applicationCreator, clk clock.Clock) (*models.User, int, error) {
	email, err := users.NormalizeEmail(f.User.Email)
	if err != nil {
		return nil, 0, err
	}
	hash, err := auth.HashPassword(f.User.Password)
	if err != nil {
		return nil, 0, err
	}

	now := clk.Now().UTC()
	user, err := store.Upsert(ctx, &models.User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   hash,
		FirstName:      f.User.FirstName,
		LastName:       f.User.LastName,
		EmailReminders: true,
		WeeklySummary:  true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, 0, errors.Annotate(err, "upserting demo user")
	}

	for i, app := range f.Applications {
		if _, err := apps.Create(ctx, user.ID, app.params()); err != nil {
			return user, i, errors.Annotatef(err, "creating application %q at %q", app.JobTitle, app.Company)
		}
	}
	return user, len(f.Applications), nil
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo user with sample applications",
	Long: `Upsert a demo user and create its sample applications from a YAML
fixture. Without --file the built-in demo fixture is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data := demoFixture
		if fixtureFile != "" {
			var err error
			if data, err = os.ReadFile(fixtureFile); err != nil {
				return errors.Annotate(err, "reading fixture")
			}
		}
		f, err := parseFixture(data)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		a, err := newApp(ctx, appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		user, created, err := seed(ctx, f, a.userStore, a.applications, clock.WallClock)
		if err != nil {
			return err
		}
		cmd.Printf("Demo user ready: %s\n", user.Email)
		cmd.Printf("Created %d sample application(s)\n", created)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&fixtureFile, "file", "", "YAML fixture file (default: built-in demo data)")
}
