// Package session turns a pose sequence into host camera entities, drives
// one render per pose and assembles the output manifest. It talks to the
// host scene graph and the render backend only through the Host and
// Renderer interfaces and never implements either.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"camsphere/internal/manifest"
	"camsphere/internal/mathutil"
	"camsphere/internal/sphere"
)

// State of the session lifecycle:
// Empty → CamerasCreated → Rendering → Rendered, with Delete returning to
// Empty from CamerasCreated or Rendered.
type State int

const (
	StateEmpty State = iota
	StateCamerasCreated
	StateRendering
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateCamerasCreated:
		return "cameras-created"
	case StateRendering:
		return "rendering"
	case StateRendered:
		return "rendered"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Host is the scene-graph capability surface the orchestrator calls.
type Host interface {
	FindObjectByNameAndType(name, typ string) (handle string, ok bool)
	CreateCamera(name string, pos mathutil.Vec3, orient mathutil.Mat3, intr sphere.CameraParams) (handle string, err error)
	DeleteObject(handle string) error
}

// Denoiser selects the render backend's denoising stage.
type Denoiser string

const (
	DenoiserNone  Denoiser = "none"
	DenoiserOptiX Denoiser = "optix"
	DenoiserOIDN  Denoiser = "openimagedenoise"
)

// RenderParams is passed through to the render backend per frame.
type RenderParams struct {
	Width       int
	Height      int
	Samples     int
	Denoiser    Denoiser
	AspectRatio float64 // 0 means Width/Height
}

// Validate rejects malformed params before any frame is submitted.
func (p RenderParams) Validate() error {
	if p.Width < 1 || p.Height < 1 {
		return fmt.Errorf("session: render resolution must be >= 1x1, got %dx%d", p.Width, p.Height)
	}
	if p.Samples < 1 {
		return fmt.Errorf("session: render samples must be >= 1, got %d", p.Samples)
	}
	switch p.Denoiser {
	case DenoiserNone, DenoiserOptiX, DenoiserOIDN:
	default:
		return fmt.Errorf("session: unknown denoiser %q", p.Denoiser)
	}
	if p.AspectRatio < 0 {
		return fmt.Errorf("session: aspect ratio must be >= 0, got %g", p.AspectRatio)
	}
	return nil
}

// Renderer is the render backend surface. A frame is atomic once
// submitted; the orchestrator waits for each result before the next.
type Renderer interface {
	RenderFrame(handle string, params RenderParams) ([]byte, error)
}

// Options tune a session beyond the sphere spec.
type Options struct {
	Logger *zap.Logger
	// NamePrefix names created cameras "<prefix>_cam_<index>".
	NamePrefix string
	// HDRI is the resolved environment asset reference, echoed into the
	// manifest header. Resolved once per session, never per pose.
	HDRI string
	// OverlapThreshold > 0 drops poses closer than this distance to an
	// earlier pose before indexing.
	OverlapThreshold float64
}

// Session owns one create/render/delete cycle. Not safe for concurrent
// use; the created entities belong exclusively to this session.
type Session struct {
	log      *zap.Logger
	host     Host
	renderer Renderer

	id        string
	prefix    string
	hdri      string
	spec      sphere.Spec
	requested int
	poses     []sphere.Pose

	state      State
	handles    []string // "" where creation failed or hasn't happened
	createErrs []error  // parallel to handles
}

// New computes the pose sequence up front (failing fast on an invalid
// spec) and returns a session in the Empty state.
func New(host Host, renderer Renderer, spec sphere.Spec, opts Options) (*Session, error) {
	poses, err := sphere.Distribute(spec)
	if err != nil {
		return nil, err
	}
	requested := len(poses)
	if opts.OverlapThreshold > 0 {
		poses = sphere.RemoveOverlapping(poses, opts.OverlapThreshold)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	prefix := opts.NamePrefix
	if prefix == "" {
		prefix = "camsphere"
	}

	return &Session{
		log:        log,
		host:       host,
		renderer:   renderer,
		id:         uuid.NewString(),
		prefix:     prefix,
		hdri:       opts.HDRI,
		spec:       spec,
		requested:  requested,
		poses:      poses,
		handles:    make([]string, len(poses)),
		createErrs: make([]error, len(poses)),
	}, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return s.state }

// Poses returns the computed sequence. Callers must not mutate it.
func (s *Session) Poses() []sphere.Pose { return s.poses }

func (s *Session) cameraName(index int) string {
	return fmt.Sprintf("%s_cam_%d", s.prefix, index)
}

// Create materializes one host camera per pose, in index order, copying
// the base camera intrinsics verbatim. Entities left over from another
// session with the same prefix make this a stale session: Create rejects
// them instead of double-creating, forcing an explicit Delete first.
// Individual host rejections are collected; the remaining entities still
// get created. Returns the number of cameras created.
func (s *Session) Create() (int, error) {
	if s.state != StateEmpty {
		return 0, &PreconditionError{Op: "create", State: s.state}
	}
	if len(s.poses) > 0 {
		if _, ok := s.host.FindObjectByNameAndType(s.cameraName(0), "CAMERA"); ok {
			return 0, &PreconditionError{Op: "create (stale session, delete existing cameras first)", State: s.state}
		}
	}

	var intr sphere.CameraParams
	if s.spec.BaseCamera != nil {
		intr = *s.spec.BaseCamera
	}

	created := 0
	var errs []error
	for i, p := range s.poses {
		name := s.cameraName(p.Index)
		h, err := s.host.CreateCamera(name, p.Position, p.Orientation, intr)
		if err != nil {
			hoErr := &HostOperationError{Op: "create", Handle: name, Err: err}
			s.createErrs[i] = hoErr
			errs = append(errs, hoErr)
			s.log.Warn("camera create rejected", zap.Int("index", p.Index), zap.Error(err))
			continue
		}
		s.handles[i] = h
		created++
	}

	if created > 0 {
		s.state = StateCamerasCreated
	}
	s.log.Info("cameras created",
		zap.String("session", s.id),
		zap.Int("created", created),
		zap.Int("poses", len(s.poses)))
	return created, errors.Join(errs...)
}

// Delete removes every entity this session created. Calling it with
// nothing created is a no-op, not an error.
func (s *Session) Delete() error {
	var errs []error
	deleted := 0
	for i, h := range s.handles {
		if h == "" {
			continue
		}
		if err := s.host.DeleteObject(h); err != nil {
			errs = append(errs, &HostOperationError{Op: "delete", Handle: h, Err: err})
			s.log.Warn("camera delete rejected", zap.String("handle", h), zap.Error(err))
		} else {
			deleted++
		}
		s.handles[i] = ""
		s.createErrs[i] = nil
	}
	s.state = StateEmpty
	if deleted > 0 {
		s.log.Info("cameras deleted", zap.String("session", s.id), zap.Int("deleted", deleted))
	}
	return errors.Join(errs...)
}

// RenderAll submits one render per pose, strictly in index order, writing
// each frame to a deterministic per-pose filename under outputDir and the
// manifest to manifest.jsonl next to them. Failed renders are recorded and
// the batch continues; cancelling ctx stops further submissions after the
// in-flight frame and the untouched poses are recorded as failed.
func (s *Session) RenderAll(ctx context.Context, params RenderParams, outputDir string) ([]manifest.Record, error) {
	if s.state != StateCamerasCreated {
		return nil, &PreconditionError{Op: "render_all", State: s.state}
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("session: create output dir: %w", err)
	}

	s.state = StateRendering
	records := make([]manifest.Record, 0, len(s.poses))

	for i, p := range s.poses {
		rec := manifest.Record{
			Index:     p.Index,
			Filename:  fmt.Sprintf("render_%03d.webp", p.Index),
			Azimuth:   p.Azimuth,
			Elevation: p.Elevation,
			Radius:    p.Radius,
			Status:    manifest.StatusOK,
		}

		switch {
		case ctx.Err() != nil:
			rec.Status = manifest.StatusFailed
			rec.Error = fmt.Sprintf("not submitted: %v", ctx.Err())
		case s.handles[i] == "":
			rec.Status = manifest.StatusFailed
			rec.Error = s.createErrs[i].Error()
		default:
			if err := s.renderPose(p, s.handles[i], params, filepath.Join(outputDir, rec.Filename)); err != nil {
				rec.Status = manifest.StatusFailed
				rec.Error = err.Error()
				s.log.Warn("render failed", zap.Int("index", p.Index), zap.Error(err))
			}
		}
		records = append(records, rec)
	}

	s.state = StateRendered

	header := manifest.Header{
		SessionID: s.id,
		CreatedAt: time.Now().UTC(),
		Spec:      s.spec,
		HDRI:      s.hdri,
		Requested: s.requested,
		Kept:      len(s.poses),
	}
	manifestPath := filepath.Join(outputDir, "manifest.jsonl")
	if err := manifest.Write(manifestPath, header, records); err != nil {
		return records, err
	}

	ok := 0
	for _, r := range records {
		if r.Status == manifest.StatusOK {
			ok++
		}
	}
	s.log.Info("render batch done",
		zap.String("session", s.id),
		zap.Int("ok", ok),
		zap.Int("failed", len(records)-ok),
		zap.String("manifest", manifestPath))
	return records, nil
}

func (s *Session) renderPose(p sphere.Pose, handle string, params RenderParams, path string) error {
	img, err := s.renderer.RenderFrame(handle, params)
	if err != nil {
		return &RenderError{Index: p.Index, Err: err}
	}
	if err := os.WriteFile(path, img, 0644); err != nil {
		return &RenderError{Index: p.Index, Err: fmt.Errorf("write frame: %w", err)}
	}
	return nil
}
