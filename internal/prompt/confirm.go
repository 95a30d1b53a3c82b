package prompt

import "context"

// Confirmer asks yes/no questions through a Driver. It satisfies
// listing.Confirmer. Answers default to no.
type Confirmer struct {
	Driver Driver
}

func (c Confirmer) Confirm(ctx context.Context, message string) (bool, error) {
	if c.Driver == nil {
		return false, nil
	}
	return c.Driver.Confirm(ctx, ConfirmConfig{Message: message})
}
