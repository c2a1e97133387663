package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"product-catalog/internal/model"
)

// validateCreateRequest checks the required fields and coerces the price.
// A field is missing when it is absent or falsy; for price that means
// null, false, "" and the number 0. A string such as "0" is not falsy.
func validateCreateRequest(req *model.CreateProductRequest) (float64, error) {
	price, present, err := parsePrice(req.Price)

	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if err == nil && !present {
		missing = append(missing, "price")
	}
	if req.Category == "" {
		missing = append(missing, "category")
	}

	if len(missing) > 0 {
		return 0, model.NewDomainError(model.ErrCodeMissingField, model.MsgRequiredFields, missing...)
	}
	if err != nil {
		return 0, err
	}

	return price, nil
}

// parsePrice accepts a JSON number or a string holding a number.
// present is false for absent, null, false, "" and 0.
func parsePrice(raw json.RawMessage) (price float64, present bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false, nil
	}

	switch string(raw) {
	case "null", "false":
		return 0, false, nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, true, invalidPrice()
	}

	switch v := value.(type) {
	case float64:
		if v == 0 {
			return 0, false, nil
		}
		price = v
	case string:
		if v == "" {
			return 0, false, nil
		}
		price, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, true, invalidPrice()
		}
	default:
		return 0, true, invalidPrice()
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, true, invalidPrice()
	}

	return price, true, nil
}

func invalidPrice() error {
	return model.NewDomainError(model.ErrCodeInvalidPrice, model.MsgInvalidPrice, "price")
}
