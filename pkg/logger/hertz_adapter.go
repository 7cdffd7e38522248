package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// HertzSlogAdapter routes hertz's hlog output into slog
type HertzSlogAdapter struct {
	logger *slog.Logger
	level  slog.LevelVar // filter applied on top of the slog handler's own level
}

var _ hlog.FullLogger = (*HertzSlogAdapter)(nil)

// NewHertzSlogAdapter creates an adapter writing to logger with the "hertz" component tag
func NewHertzSlogAdapter(logger *slog.Logger) *HertzSlogAdapter {
	a := &HertzSlogAdapter{logger: Component(logger, "hertz")}
	a.level.Set(slog.LevelDebug)
	return a
}

func (h *HertzSlogAdapter) log(ctx context.Context, level slog.Level, msg string) {
	if level < h.level.Level() {
		return
	}
	h.logger.Log(ctx, level, msg)
}

func (h *HertzSlogAdapter) Trace(v ...any)  { h.log(context.Background(), slog.LevelDebug, sprint(v...)) }
func (h *HertzSlogAdapter) Debug(v ...any)  { h.log(context.Background(), slog.LevelDebug, sprint(v...)) }
func (h *HertzSlogAdapter) Info(v ...any)   { h.log(context.Background(), slog.LevelInfo, sprint(v...)) }
func (h *HertzSlogAdapter) Notice(v ...any) { h.log(context.Background(), slog.LevelInfo, sprint(v...)) }
func (h *HertzSlogAdapter) Warn(v ...any)   { h.log(context.Background(), slog.LevelWarn, sprint(v...)) }
func (h *HertzSlogAdapter) Error(v ...any)  { h.log(context.Background(), slog.LevelError, sprint(v...)) }
func (h *HertzSlogAdapter) Fatal(v ...any)  { h.log(context.Background(), slog.LevelError, sprint(v...)) }

func (h *HertzSlogAdapter) Tracef(format string, v ...any) {
	h.log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Debugf(format string, v ...any) {
	h.log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Infof(format string, v ...any) {
	h.log(context.Background(), slog.LevelInfo, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Noticef(format string, v ...any) {
	h.log(context.Background(), slog.LevelInfo, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Warnf(format string, v ...any) {
	h.log(context.Background(), slog.LevelWarn, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Errorf(format string, v ...any) {
	h.log(context.Background(), slog.LevelError, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Fatalf(format string, v ...any) {
	h.log(context.Background(), slog.LevelError, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxTracef(ctx context.Context, format string, v ...any) {
	h.log(ctx, slog.LevelDebug, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxDebugf(ctx context.Context, format string, v ...any) {
	h.log(ctx, slog.LevelDebug, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxInfof(ctx context.Context, format string, v ...any) {
	h.log(ctx, slog.LevelInfo, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxNoticef(ctx context.Context, format string, v ...any) {
	h.log(ctx, slog.LevelInfo, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxWarnf(ctx context.Context, format string, v ...any) {
	h.log(ctx, slog.LevelWarn, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxErrorf(ctx context.Context, format string, v ...any) {
	h.log(ctx, slog.LevelError, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxFatalf(ctx context.Context, format string, v ...any) {
	h.log(ctx, slog.LevelError, fmt.Sprintf(format, v...))
}

// SetLevel maps hertz levels onto slog levels
func (h *HertzSlogAdapter) SetLevel(level hlog.Level) {
	switch {
	case level <= hlog.LevelDebug:
		h.level.Set(slog.LevelDebug)
	case level <= hlog.LevelNotice:
		h.level.Set(slog.LevelInfo)
	case level == hlog.LevelWarn:
		h.level.Set(slog.LevelWarn)
	default:
		h.level.Set(slog.LevelError)
	}
}

// SetOutput is a no-op; output belongs to the slog handler
func (h *HertzSlogAdapter) SetOutput(io.Writer) {}

func sprint(v ...any) string {
	if len(v) == 1 {
		if s, ok := v[0].(string); ok {
			return s
		}
	}
	return fmt.Sprint(v...)
}
