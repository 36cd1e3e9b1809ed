package logger

import (
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/mbergo/guardrails/internal/cli"
)

// coloredConsoleEncoder wraps zap's console encoder and syntax-highlights
// the trailing JSON field blob in development logs.
type coloredConsoleEncoder struct {
	zapcore.Encoder
}

func NewColoredConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &coloredConsoleEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
	}
}

func (c *coloredConsoleEncoder) Clone() zapcore.Encoder {
	return &coloredConsoleEncoder{
		Encoder: c.Encoder.Clone(),
	}
}

func (c *coloredConsoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf, err := c.Encoder.EncodeEntry(ent, fields)
	if err != nil {
		return nil, err
	}

	logLine := buf.String()

	// The console encoder separates metadata from the JSON fields with a
	// tab. Everything from "\t{" onward is the field blob.
	splitIdx := strings.Index(logLine, "\t{")
	if splitIdx == -1 {
		return buf, nil
	}

	metaPart := logLine[:splitIdx+1]
	jsonPart := logLine[splitIdx+1:]

	newBuf := buffer.NewPool().Get()
	newBuf.AppendString(metaPart)
	newBuf.AppendString(cli.HighlightJSON(jsonPart))

	buf.Free()
	return newBuf, nil
}
