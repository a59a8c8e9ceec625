// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// UpdateEvent is one filesystem change reported to the running child process, per §6's
// update event format: a JSON array of [kind, path].
type UpdateEvent struct {
	Kind string
	Path string
}

// MarshalJSON encodes an UpdateEvent as the two-element array §6 specifies, rather than
// the usual field-named object.
func (e UpdateEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Kind, e.Path})
}

// PostUpdateEvents delivers events to the child runtime process listening on port, per
// §6's "HTTP POST to the running child, application/json" contract. It is best-effort:
// a child that is not yet listening (or has exited) is not treated as a build failure,
// so the error is returned for logging only, never retried.
func PostUpdateEvents(ctx context.Context, port int, events []UpdateEvent) error {
	body, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFatal, err)
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/", port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: child responded %s", ErrFatal, resp.Status)
	}
	return nil
}
