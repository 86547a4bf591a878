package commandv1

import (
	"fmt"
	"strconv"

	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
	"github.com/chetanguptaa/kaleshi/pkg/errors"
	"github.com/google/uuid"
)

// Kind is the closed set of command variants the engine accepts.
type Kind string

const (
	// KindNewOrder places a new order.
	KindNewOrder Kind = "order.new"
	// KindCancelOrder cancels a resting order.
	KindCancelOrder Kind = "order.cancel"
)

// Command is a validated inbound command, ready for the engine.
type Command struct {
	Kind Kind `json:"kind"`

	// Order is set for KindNewOrder.
	Order *orderbookv1.Order `json:"order,omitempty"`

	// OrderID and AccountID are set for KindCancelOrder.
	OrderID   string `json:"order_id,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

// Parse converts raw stream entry fields into a Command. entryID is the
// stream entry id of the command; when the producer did not assign an
// order_id, one is derived deterministically from it so redelivery and replay
// assign the same id.
func Parse(fields map[string]interface{}, entryID string) (*Command, error) {
	kind, err := stringField(fields, "type")
	if err != nil {
		return nil, err
	}

	switch Kind(kind) {
	case KindNewOrder:
		order, err := parseOrder(fields, entryID)
		if err != nil {
			return nil, err
		}
		return &Command{Kind: KindNewOrder, Order: order}, nil
	case KindCancelOrder:
		orderID, err := stringField(fields, "order_id")
		if err != nil {
			return nil, err
		}
		accountID, err := stringField(fields, "account_id")
		if err != nil {
			return nil, err
		}
		return &Command{Kind: KindCancelOrder, OrderID: orderID, AccountID: accountID}, nil
	default:
		return nil, errors.NewErrorDetails(
			fmt.Sprintf("unknown command type: '%s'", kind),
			string(errors.UnknownCommandError),
			"type",
		)
	}
}

// DeriveOrderID returns the deterministic order id assigned to a command that
// arrived without one.
func DeriveOrderID(entryID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("order:"+entryID)).String()
}

func parseOrder(fields map[string]interface{}, entryID string) (*orderbookv1.Order, error) {
	outcomeID, err := stringField(fields, "outcome_id")
	if err != nil {
		return nil, err
	}
	accountID, err := stringField(fields, "account_id")
	if err != nil {
		return nil, err
	}

	sideRaw, err := stringField(fields, "side")
	if err != nil {
		return nil, err
	}
	side, err := orderbookv1.ParseSide(sideRaw)
	if err != nil {
		return nil, err
	}

	typeRaw, err := stringField(fields, "order_type")
	if err != nil {
		return nil, err
	}
	orderType, err := orderbookv1.ParseOrderType(typeRaw)
	if err != nil {
		return nil, err
	}

	tif, err := orderbookv1.ParseTimeInForce(optionalField(fields, "time_in_force"))
	if err != nil {
		return nil, err
	}

	marketID, err := uintField(fields, "market_id", 32)
	if err != nil {
		return nil, err
	}

	// Market orders may omit price entirely.
	var price uint64
	if raw := optionalField(fields, "price"); raw != "" {
		price, err = uintField(fields, "price", 64)
		if err != nil {
			return nil, err
		}
	}

	qtyOriginal, err := uintField(fields, "qty_original", 64)
	if err != nil {
		return nil, err
	}

	qtyRemaining := qtyOriginal
	if raw := optionalField(fields, "qty_remaining"); raw != "" {
		qtyRemaining, err = uintField(fields, "qty_remaining", 64)
		if err != nil {
			return nil, err
		}
	}

	orderID := optionalField(fields, "order_id")
	if orderID == "" {
		orderID = DeriveOrderID(entryID)
	}

	// Business validation is left to the engine so a well-formed but invalid
	// order can still produce an order.rejected event.
	return &orderbookv1.Order{
		OrderID:      orderID,
		AccountID:    accountID,
		OutcomeID:    outcomeID,
		OutcomeName:  optionalField(fields, "outcome_name"),
		MarketID:     uint32(marketID),
		Side:         side,
		Type:         orderType,
		TimeInForce:  tif,
		Price:        price,
		QtyRemaining: qtyRemaining,
		QtyOriginal:  qtyOriginal,
	}, nil
}

func stringField(fields map[string]interface{}, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", errors.NewErrorDetails(
			fmt.Sprintf("missing required field: '%s'", key),
			string(errors.MissingFieldError),
			key,
		)
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", errors.NewErrorDetails(
			fmt.Sprintf("field '%s' must be a non-empty string", key),
			string(errors.MissingFieldError),
			key,
		)
	}
	return value, nil
}

func optionalField(fields map[string]interface{}, key string) string {
	if raw, ok := fields[key]; ok {
		if value, ok := raw.(string); ok {
			return value
		}
	}
	return ""
}

func uintField(fields map[string]interface{}, key string, bits int) (uint64, error) {
	raw, err := stringField(fields, key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(raw, 10, bits)
	if err != nil {
		return 0, errors.NewValidation(fmt.Sprintf("invalid %s '%s': %v", key, raw, err), key)
	}
	return value, nil
}
