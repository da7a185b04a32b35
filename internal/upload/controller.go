// Package upload drives a single-file upload to the invoice processing
// endpoint and keeps the UI affordances in step with it.
//
// The Controller mirrors the browser page: a file picker, a file-name label,
// a process button and an output region. The process button is enabled iff
// exactly one file is selected and no submission is in flight.
package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// UI text shared with the browser page
const (
	NoFileName    = "No file selected"
	InitialPrompt = "Upload an image and click Process Invoice to see results here."
	ReadyPrompt   = `File selected. Click "Process Invoice" to continue.`
	BusyPrompt    = "Processing invoice..."
	IdleLabel     = "Process Invoice"
	BusyLabel     = "Processing..."
)

var (
	// ErrNoFile is returned by Submit when nothing is selected
	ErrNoFile = errors.New("no file selected")

	// ErrInFlight is returned by Submit while a submission is pending
	ErrInFlight = errors.New("submission already in flight")
)

// View is the set of affordances the controller drives. Implementations
// must not call back into the Controller.
type View interface {
	SetFileName(name string)
	SetProcessEnabled(enabled bool)
	SetProcessLabel(label string)
	SetOutput(text string)
}

// Picker is the native file-picker. An empty slice means the selection was
// cleared.
type Picker interface {
	Pick(ctx context.Context) ([]File, error)
}

// Processor performs one submission
type Processor interface {
	Process(ctx context.Context, f File) (*Response, error)
}

// State is the controller's position in its idle/submitting cycle
type State int

const (
	StateNoFile State = iota
	StateFileSelected
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateNoFile:
		return "idle (no file)"
	case StateFileSelected:
		return "idle (file selected)"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Controller binds a View, Picker and Processor together
type Controller struct {
	view      View
	picker    Picker
	processor Processor

	mu       sync.Mutex
	selected *File
	inFlight bool
}

// NewController wires the collaborators and puts the view in its initial
// state. Every collaborator is required.
func NewController(view View, picker Picker, processor Processor) (*Controller, error) {
	if view == nil {
		return nil, errors.New("upload: view is required")
	}
	if picker == nil {
		return nil, errors.New("upload: picker is required")
	}
	if processor == nil {
		return nil, errors.New("upload: processor is required")
	}

	c := &Controller{
		view:      view,
		picker:    picker,
		processor: processor,
	}
	view.SetFileName(NoFileName)
	view.SetProcessLabel(IdleLabel)
	view.SetProcessEnabled(false)
	view.SetOutput(InitialPrompt)
	return c, nil
}

// State reports where the controller is in its cycle
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.inFlight:
		return StateSubmitting
	case c.selected != nil:
		return StateFileSelected
	default:
		return StateNoFile
	}
}

// SelectFile opens the picker and applies its result
func (c *Controller) SelectFile(ctx context.Context) error {
	files, err := c.picker.Pick(ctx)
	if err != nil {
		return fmt.Errorf("picking file: %w", err)
	}
	c.FileChosen(files)
	return nil
}

// FileChosen applies a picker result. Only the first file is used.
func (c *Controller) FileChosen(files []File) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(files) == 0 {
		c.selected = nil
		c.view.SetFileName(NoFileName)
		c.view.SetProcessEnabled(false)
		c.view.SetOutput(InitialPrompt)
		return
	}

	f := files[0]
	c.selected = &f
	c.view.SetFileName(f.Name)
	c.view.SetProcessEnabled(!c.inFlight)
	c.view.SetOutput(ReadyPrompt)
}

// Submit posts the selected file once and renders the outcome. With no file
// selected, or a submission pending, it changes nothing and returns
// ErrNoFile or ErrInFlight. Rendered failures are not returned as errors.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return ErrNoFile
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrInFlight
	}
	f := *c.selected
	c.inFlight = true
	c.view.SetProcessEnabled(false)
	c.view.SetProcessLabel(BusyLabel)
	c.view.SetOutput(BusyPrompt)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.inFlight = false
		c.view.SetProcessEnabled(c.selected != nil)
		c.view.SetProcessLabel(IdleLabel)
	}()

	output := Render(c.processor.Process(ctx, f))

	c.mu.Lock()
	c.view.SetOutput(output)
	c.mu.Unlock()
	return nil
}
