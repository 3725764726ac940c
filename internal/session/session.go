package session

import (
	"sync"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/options"
)

// Session holds the selected image and processing options of one tuning
// session. Every accepted change issues a new request on its controller.
type Session struct {
	ctrl *Controller

	mu    sync.Mutex
	image string
	opts  options.ProcessingOptions
}

// New creates a session on image with default options and issues the
// initial request.
func New(ctrl *Controller, image string) *Session {
	s := &Session{ctrl: ctrl, image: image, opts: options.DefaultProcessing()}
	s.mu.Lock()
	s.issueLocked()
	s.mu.Unlock()
	return s
}

// Controller returns the controller publishing this session's previews.
func (s *Session) Controller() *Controller { return s.ctrl }

// Image returns the selected image name.
func (s *Session) Image() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// Options returns the current processing options.
func (s *Session) Options() options.ProcessingOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// SelectImage switches to another image, keeping the options.
func (s *Session) SelectImage(name string) (uint64, error) {
	if name == "" {
		return 0, apperr.Errorf(apperr.InvalidConfiguration, "session.select_image", "empty image name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = name
	return s.issueLocked(), nil
}

// SetFormat switches the output format. The encode options are reset to
// the defaults of the new format in the same update.
func (s *Session) SetFormat(f options.ImageFormat) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.opts.WithFormat(f)
	if err != nil {
		return 0, err
	}
	s.opts = next
	return s.issueLocked(), nil
}

// SetEncodeOptions replaces the encode options. The variant must match
// the current format and every field must be in range.
func (s *Session) SetEncodeOptions(enc options.EncodeOptions) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.opts.WithEncode(enc)
	if err != nil {
		return 0, err
	}
	if err := options.Validate(next.Encode); err != nil {
		return 0, err
	}
	s.opts = next
	return s.issueLocked(), nil
}

// SetField changes a single encode option by schema key.
func (s *Session) SetField(key, value string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc, err := options.SetField(s.opts.Encode, key, value)
	if err != nil {
		return 0, err
	}
	if err := options.Validate(enc); err != nil {
		return 0, err
	}
	s.opts.Encode = enc
	return s.issueLocked(), nil
}

// SetResize replaces the resize configuration.
func (s *Session) SetResize(r options.ResizeSpec) (uint64, error) {
	if err := options.ValidateResize(r); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = s.opts.WithResize(r)
	return s.issueLocked(), nil
}

// SetOptions replaces all processing options at once.
func (s *Session) SetOptions(p options.ProcessingOptions) (uint64, error) {
	if err := options.ValidateProcessing(p); err != nil {
		return 0, err
	}
	p.Encode = options.Normalize(p.Encode)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = p
	return s.issueLocked(), nil
}

// Refresh reissues the current request, for example after a failure.
func (s *Session) Refresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked()
}

func (s *Session) issueLocked() uint64 {
	return s.ctrl.Request(s.image, s.opts)
}
