package usecases

import (
	"math/rand"
	"time"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
)

// AlertService produces the crime-alert banner figure. The weekly count is
// simulated until a real statistics feed exists.
type AlertService struct {
	now func() time.Time
}

// NewAlertService creates an AlertService using the wall clock.
func NewAlertService() *AlertService {
	return &AlertService{now: time.Now}
}

// Current returns this week's simulated figure, between 5 and 19 inclusive,
// dated today.
func (s *AlertService) Current() domain.CrimeAlert {
	return domain.CrimeAlert{
		Count: 5 + rand.Intn(15),
		Date:  s.now().Format("Monday, January 2, 2006"),
	}
}
