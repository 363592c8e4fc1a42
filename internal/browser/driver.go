package browser

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Selector locates an element using a WebDriver location strategy.
type Selector struct {
	Using string
	Value string
}

// XPath builds an xpath selector.
func XPath(value string) Selector {
	return Selector{Using: "xpath", Value: value}
}

// CSS builds a css selector.
func CSS(value string) Selector {
	return Selector{Using: "css selector", Value: value}
}

var (
	// ErrNotFound reports that a condition did not appear within its bounded
	// wait. It is a negative observation, not a failure.
	ErrNotFound = errors.New("browser: condition not found")

	// ErrSessionLost reports that the driving session has been destroyed and
	// no further calls can succeed.
	ErrSessionLost = errors.New("browser: driving session lost")
)

// Driver describes the browser-driving capability the bot consumes.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Refresh(ctx context.Context) error
	FindAndClick(ctx context.Context, sel Selector, timeout time.Duration) error
	FindAndType(ctx context.Context, sel Selector, text string, timeout time.Duration) error
	WaitForAny(ctx context.Context, sels []Selector, timeout time.Duration) (int, error)
	GetAttribute(ctx context.Context, sel Selector, name string, timeout time.Duration) (string, error)
	GetText(ctx context.Context, sel Selector, timeout time.Duration) (string, error)
	ExecuteScript(ctx context.Context, script string, args ...any) (json.RawMessage, error)
	Quit(ctx context.Context) error
}
