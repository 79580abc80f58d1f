package scenariotest

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/integrail/suggest-e2e/pkg/browser"
	"github.com/integrail/suggest-e2e/pkg/browser/mocks"
	"github.com/integrail/suggest-e2e/pkg/scenario"
)

func TestRunTSkipsNotAutomated(t *testing.T) {
	RegisterTestingT(t)
	const wait = 10 * time.Second
	session := mocks.NewSession(t)
	session.On("Navigate", mock.Anything, "https://ru.wikipedia.org").Return(nil).Once()
	session.On("WaitVisible", mock.Anything, "#searchInput", wait).Return(nil).Once()
	session.On("Click", mock.Anything, "#searchInput").Return(nil).Once()
	session.On("SendKeys", mock.Anything, "#searchInput", "Иван").Return(nil).Once()
	session.On("WaitVisible", mock.Anything, ".suggestions", wait).Return(nil).Once()
	session.On("ClickNth", mock.Anything, ".suggestions-result", 0).Return(nil).Once()
	session.On("WaitVisible", mock.Anything, "#firstHeading span", wait).Return(nil).Once()
	session.On("Text", mock.Anything, "#firstHeading span").Return("Иван", nil).Once()
	session.On("Close").Return(nil).Once()

	opened := 0
	factory := func(context.Context) (browser.Session, error) {
		opened++
		return session, nil
	}
	scenarios, err := scenario.Select(scenario.Suggests(), "direct-suggest-navigation", "special-hint-navigation")
	Expect(err).To(BeNil())

	RunT(t, scenario.NewRunner(factory, "", scenario.WithReporter(Reporter(t))), scenarios)
	Expect(opened).To(Equal(1))
}
