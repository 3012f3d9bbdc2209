package schederr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/inkwell/printsched/common"
)

func TestKindOfClassifiesWrappedErrors(t *testing.T) {
	a := assert.New(t)

	base := errors.New("destination spool directory missing")
	wrapped := Wrap(base, common.EErrorKind.Internal(), "could not open spool directory")

	a.Equal(common.EErrorKind.Internal(), KindOf(wrapped))
	a.Contains(errors.Cause(wrapped).Error(), "spool directory missing")
}

func TestKindOfDefaultsUnclassifiedErrorsToInternal(t *testing.T) {
	a := assert.New(t)
	a.Equal(common.EErrorKind.Internal(), KindOf(errors.New("plain error")))
	a.Equal(common.EErrorKind.None(), KindOf(nil))
}

func TestConstructorHelpers(t *testing.T) {
	a := assert.New(t)
	a.Equal(common.EErrorKind.NotFound(), KindOf(NotFound("no such destination")))
	a.Equal(common.EErrorKind.Forbidden(), KindOf(Forbidden("not authorized")))
}
