package ierr

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// WrapErrInvalidKey wraps ErrInvalidKey with the offending key.
func WrapErrInvalidKey(key string, msg ...string) error {
	err := errors.Wrapf(ErrInvalidKey, "key=%s", key)
	if len(msg) > 0 {
		err = errors.Wrap(err, strJoin(msg))
	}
	return err
}

// WrapErrNetwork wraps ErrNetwork with the url and the transport cause.
func WrapErrNetwork(url string, cause error, msg ...string) error {
	var err error
	if cause != nil {
		err = errors.Wrapf(ErrNetwork, "url=%s, cause=%v", url, cause)
	} else {
		err = errors.Wrapf(ErrNetwork, "url=%s", url)
	}
	if len(msg) > 0 {
		err = errors.Wrap(err, strJoin(msg))
	}
	return err
}

// WrapErrNetworkStatus wraps ErrNetwork with the url and a non-success
// HTTP status.
func WrapErrNetworkStatus(url string, statusCode int, msg ...string) error {
	err := errors.Wrapf(ErrNetwork, "url=%s, status=%d", url, statusCode)
	if len(msg) > 0 {
		err = errors.Wrap(err, strJoin(msg))
	}
	return err
}

// WrapErrDecode wraps ErrDecode with the url and the decoder cause.
func WrapErrDecode(url string, cause error, msg ...string) error {
	var err error
	if cause != nil {
		err = errors.Wrapf(ErrDecode, "url=%s, cause=%v", url, cause)
	} else {
		err = errors.Wrapf(ErrDecode, "url=%s", url)
	}
	if len(msg) > 0 {
		err = errors.Wrap(err, strJoin(msg))
	}
	return err
}

// WrapErrLoaderClosed wraps ErrLoaderClosed with the rejected key.
func WrapErrLoaderClosed(key string) error {
	return errors.Wrapf(ErrLoaderClosed, "key=%s", key)
}

func strJoin(msg []string) string {
	return strings.Join(msg, "; ")
}
