// Package fingerprint derives a best-effort per-device identifier from
// environment signals. Generation must never block or fail the sign-up flow:
// unavailable probes degrade to sentinel values and persistence problems are
// logged, not surfaced.
package fingerprint

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/thibis/thibis/internal/client/domain"
	"github.com/thibis/thibis/internal/client/registry"
)

// Sentinel values stored when a probe cannot run.
const (
	SentinelNoWebGL     = "no-webgl"
	SentinelWebGLError  = "webgl-error"
	SentinelNoCanvas    = "no-canvas"
	SentinelCanvasError = "canvas-error"
)

const (
	// canvasHashLen bounds the canvas encoding used as hash input.
	canvasHashLen = 100
	// canvasStoreLen bounds the canvas encoding kept on the fingerprint.
	canvasStoreLen = 200
)

// ErrUnavailable is returned by probes on environments that simply lack the
// capability (as opposed to an actual probe failure).
var ErrUnavailable = errors.New("fingerprint: capability unavailable")

// Environment supplies the raw device signals. Implementations must be
// deterministic for an unchanged environment.
type Environment interface {
	UserAgent() string
	ScreenResolution() string
	Timezone() string
	Language() string
	Platform() string
	CookiesEnabled() bool
	LocalStorage() bool
	SessionStorage() bool

	// WebGL returns a "vendor-renderer" string. ErrUnavailable maps to the
	// no-webgl sentinel, any other error to webgl-error.
	WebGL() (string, error)

	// Canvas returns an encoding of a fixed rendered text. ErrUnavailable
	// maps to the no-canvas sentinel, any other error to canvas-error.
	Canvas() (string, error)
}

// Generator computes fingerprints and keeps the persisted snapshot current.
type Generator struct {
	Env      Environment
	Registry *registry.Registry
	Logger   *slog.Logger
}

// Generate computes the current device fingerprint. Two calls under an
// unchanged environment yield the same ID. When the ID differs from the
// persisted snapshot a warning is logged; control flow is never altered.
func (g *Generator) Generate(ctx context.Context) domain.DeviceFingerprint {
	fp := domain.DeviceFingerprint{
		UserAgent:        g.Env.UserAgent(),
		ScreenResolution: g.Env.ScreenResolution(),
		Timezone:         g.Env.Timezone(),
		Language:         g.Env.Language(),
		Platform:         g.Env.Platform(),
		CookiesEnabled:   g.Env.CookiesEnabled(),
		LocalStorage:     g.Env.LocalStorage(),
		SessionStorage:   g.Env.SessionStorage(),
	}

	fp.WebGL = probe(g.Env.WebGL, SentinelNoWebGL, SentinelWebGLError)
	canvas := probe(g.Env.Canvas, SentinelNoCanvas, SentinelCanvasError)

	components := []string{
		fp.UserAgent,
		fp.ScreenResolution,
		fp.Timezone,
		fp.Language,
		fp.Platform,
		strconv.FormatBool(fp.CookiesEnabled),
		strconv.FormatBool(fp.LocalStorage),
		strconv.FormatBool(fp.SessionStorage),
		fp.WebGL,
		truncate(canvas, canvasHashLen),
	}
	fp.ID = Hash(strings.Join(components, "|"))
	fp.Canvas = truncate(canvas, canvasStoreLen)

	g.reconcileSnapshot(ctx, fp)
	return fp
}

// reconcileSnapshot compares the fresh fingerprint against the persisted one
// and stores the new snapshot. A changed ID is only a soft signal: settings
// changes (locale, resolution) legitimately move it.
func (g *Generator) reconcileSnapshot(ctx context.Context, fp domain.DeviceFingerprint) {
	if g.Registry == nil {
		return
	}

	log := g.logger()
	prev, ok, err := g.Registry.Fingerprint(ctx)
	if err != nil {
		log.Warn("could not read stored fingerprint", "error", err)
	}
	if ok && prev.ID != fp.ID {
		log.Warn("device fingerprint changed since last visit",
			"previous_id", prev.ID,
			"current_id", fp.ID,
		)
	}

	if err := g.Registry.SaveFingerprint(ctx, fp); err != nil {
		log.Warn("could not persist fingerprint snapshot", "error", err)
	}
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func probe(fn func() (string, error), unavailable, failed string) string {
	v, err := fn()
	switch {
	case errors.Is(err, ErrUnavailable):
		return unavailable
	case err != nil:
		return failed
	default:
		return v
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
