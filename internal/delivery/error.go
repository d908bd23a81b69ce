package delivery

import "errors"

var ErrOutsideDeliveryRadius = errors.New("outside delivery radius")
