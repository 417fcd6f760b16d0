package model

import (
	"fmt"
	"time"
)

// Chunk is one transcribable slice of a source recording. When Original is
// true the chunk is the source file itself and must never be deleted.
type Chunk struct {
	Path     string
	Ordinal  int
	Original bool
	Start    time.Duration
	End      time.Duration
}

func (c Chunk) Duration() time.Duration {
	return c.End - c.Start
}

func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d [%v-%v]", c.Ordinal, c.Start, c.End)
}
