package snippet

import "errors"

// ErrUnknownStyle is returned by Render for a style with no template.
var ErrUnknownStyle = errors.New("unknown snippet style")
