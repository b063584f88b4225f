package holiday

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of the Provider interface for testing.
type MockProvider struct {
	mock.Mock
}

// IsHoliday is a mock implementation.
func (m *MockProvider) IsHoliday(date time.Time, region string) bool {
	args := m.Called(date, region)
	return args.Bool(0)
}
