package extract

import (
	"context"
	"fmt"
)

// Placeholder covers formats accepted for upload but not yet parsed. The
// document is stored with marker text so it shows up in listings.
type Placeholder struct {
	Kind string
}

func (e *Placeholder) Extract(ctx context.Context, data []byte, filename string) Result {
	return degradedResult(fmt.Sprintf("%s: %s\nContent extraction requires additional processing.", e.Kind, filename))
}
