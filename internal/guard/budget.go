package guard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"aigov/internal/report"
	"aigov/internal/textutil"
)

var chunkMarker = regexp.MustCompile(`--- CHUNK \d+ ---`)

// Packet is the measured size of a context packet.
type Packet struct {
	Chunks int
	Tokens int // approximate: words × 1.3, rounded up
}

// MeasurePacket counts chunk markers and approximate tokens in text.
func MeasurePacket(text []byte) Packet {
	text = textutil.NormalizeUTF8LF(text)
	words := textutil.Words(text)
	return Packet{
		Chunks: len(chunkMarker.FindAll(text, -1)),
		Tokens: (words*13 + 9) / 10,
	}
}

// Budget bounds a packet.
type Budget struct {
	MaxChunks int
	MaxTokens int
}

// Check returns the first exceeded limit as a report line, or "" when the
// packet fits. Chunks are checked before tokens.
func (b Budget) Check(p Packet) string {
	if p.Chunks > b.MaxChunks {
		return fmt.Sprintf("Packet has %d chunks (max %d).", p.Chunks, b.MaxChunks)
	}
	if p.Tokens > b.MaxTokens {
		return fmt.Sprintf("Packet ~%d tokens (max ~%d).", p.Tokens, b.MaxTokens)
	}
	return ""
}

// RunBudget checks the packet at path. A missing packet passes silently.
func RunBudget(path string, b Budget, rep *report.Reporter) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		rep.Fail(fmt.Sprintf("Cannot read %s: %v", path, err))
		return report.ErrFailed
	}
	if msg := b.Check(MeasurePacket(data)); msg != "" {
		rep.Fail(msg)
		return report.ErrFailed
	}
	rep.OK("Packet budget OK.")
	return nil
}
