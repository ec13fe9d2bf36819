package broadcast

import (
	"fmt"
	"strings"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/pkg/errs"
)

// ChannelKind is the closed set of channel families.
type ChannelKind string

const (
	KindDriver   ChannelKind = "driver"
	KindShipment ChannelKind = "shipment"
	KindUser     ChannelKind = "user"
	KindPublic   ChannelKind = "public"
)

// ChannelID names one channel: "driver:{id}", "shipment:{id}", "user:{id}" or "public".
type ChannelID struct {
	kind ChannelKind
	id   kernel.UUID
}

func DriverChannel(id kernel.UUID) ChannelID   { return ChannelID{kind: KindDriver, id: id} }
func ShipmentChannel(id kernel.UUID) ChannelID { return ChannelID{kind: KindShipment, id: id} }
func UserChannel(id kernel.UUID) ChannelID     { return ChannelID{kind: KindUser, id: id} }
func PublicChannel() ChannelID                 { return ChannelID{kind: KindPublic} }

// ParseChannelID accepts the rendered form and rejects anything outside the closed set.
func ParseChannelID(s string) (ChannelID, error) {
	if s == string(KindPublic) {
		return PublicChannel(), nil
	}

	kind, raw, ok := strings.Cut(s, ":")
	if !ok {
		return ChannelID{}, errs.NewValueIsInvalidErrorWithCause("channel", fmt.Errorf("%q has no scope prefix", s))
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return ChannelID{}, errs.NewValueIsInvalidErrorWithCause("channel", err)
	}
	c := ChannelID{kind: ChannelKind(kind), id: id}
	if err := c.Validate(); err != nil {
		return ChannelID{}, err
	}
	return c, nil
}

func (c ChannelID) Kind() ChannelKind { return c.kind }
func (c ChannelID) ID() kernel.UUID   { return c.id }

// IsPublic reports whether subscribing needs no credentials.
func (c ChannelID) IsPublic() bool { return c.kind == KindPublic }

func (c ChannelID) Validate() error {
	switch c.kind {
	case KindPublic:
		if !c.id.IsZero() {
			return errs.NewValueIsInvalidErrorWithCause("channel", fmt.Errorf("public channel takes no identifier"))
		}
		return nil
	case KindDriver, KindShipment, KindUser:
		if err := c.id.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("channel", err)
		}
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("channel", fmt.Errorf("%q is not a channel kind", string(c.kind)))
	}
}

func (c ChannelID) String() string {
	if c.kind == KindPublic {
		return string(KindPublic)
	}
	return string(c.kind) + ":" + c.id.String()
}

// MarshalText lets channel ids travel as plain JSON strings.
func (c ChannelID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ChannelID) UnmarshalText(b []byte) error {
	parsed, err := ParseChannelID(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
