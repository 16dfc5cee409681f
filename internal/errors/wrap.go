package errors

import "fmt"

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage:
//
//	if err := b.Load(ctx, reg); err != nil {
//	    return errors.Wrap(err, "load script steps")
//	}
//
// The wrapped error preserves the original chain, so errors.Is() checks
// against sentinels keep working.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context to errors at package boundaries.
// It returns nil if err is nil.
//
//	return errors.Wrapf(err, "step %s", def.Location())
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Configf builds an ErrConfiguration error with a formatted detail message.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// ConfigWrap builds an ErrConfiguration error that also keeps err in the
// chain. It returns nil if err is nil.
//
//	return errors.ConfigWrap(err, "pattern %q", src)
func ConfigWrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrConfiguration, fmt.Sprintf(format, args...), err)
}
