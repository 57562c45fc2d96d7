package export

import "context"

// MockDriver is a mock implementation of Driver for testing. It records every
// call and serves canned HTML; individual selectors can be made to fail. It
// can be used across packages to test code that drives the export flow.
type MockDriver struct {
	// Calls records each call as {method, selector-or-url, text...}.
	Calls [][]string
	// HTML is returned by OuterHTML calls.
	HTML string
	// Errors maps "method:selector" to the error that call returns.
	Errors map[string]error
	// Closed reports whether Close was called.
	Closed bool
}

// Interface guard
var _ Driver = &MockDriver{}

func (m *MockDriver) call(method string, args ...string) error {
	m.Calls = append(m.Calls, append([]string{method}, args...))
	if len(args) == 0 {
		return nil
	}
	return m.Errors[method+":"+args[0]]
}

func (m *MockDriver) Navigate(_ context.Context, url string) error {
	return m.call("navigate", url)
}

func (m *MockDriver) WaitVisible(_ context.Context, selector string) error {
	return m.call("wait", selector)
}

func (m *MockDriver) Click(_ context.Context, selector string) error {
	return m.call("click", selector)
}

func (m *MockDriver) SendKeys(_ context.Context, selector, text string) error {
	return m.call("sendkeys", selector, text)
}

func (m *MockDriver) OuterHTML(_ context.Context, selector string) (string, error) {
	if err := m.call("html", selector); err != nil {
		return "", err
	}
	return m.HTML, nil
}

func (m *MockDriver) Close() error {
	m.Closed = true
	return nil
}

// ClickedSelectors returns the selectors of all recorded Click calls in order.
func (m *MockDriver) ClickedSelectors() []string {
	var clicked []string
	for _, call := range m.Calls {
		if call[0] == "click" && len(call) > 1 {
			clicked = append(clicked, call[1])
		}
	}
	return clicked
}
