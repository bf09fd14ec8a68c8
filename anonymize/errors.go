// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package anonymize

import (
	"github.com/pkg/errors"
)

// ErrStructureNotFound is returned when an expected byte signature is
// absent from the buffer being scanned. Wrapped variants name the missing
// structure. Every pass treats this as fatal: the downstream edits are
// unsound without the anchor.
var ErrStructureNotFound = errors.New("expected structure not found")

// ErrChatEncoding is returned when a chat payload that must be textually
// edited is not valid UTF-8. It is recoverable per record: the record is
// left unedited rather than corrupted.
var ErrChatEncoding = errors.New("chat payload is not decodable text")
