package service

import (
	"strings"

	"github.com/bossshopp/internal/constants"
)

// allowedTransitions 订单状态流转表，未列出的状态为终态
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
		constants.OrderStatusRefunded:   true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
		constants.OrderStatusRefunded:  true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
}

var paymentStatuses = map[string]bool{
	constants.PaymentStatusPending:  true,
	constants.PaymentStatusPaid:     true,
	constants.PaymentStatusFailed:   true,
	constants.PaymentStatusRefunded: true,
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// canTransition 判断状态流转是否允许
func canTransition(from, to string) bool {
	targets, ok := allowedTransitions[normalizeStatus(from)]
	if !ok {
		return false
	}
	return targets[normalizeStatus(to)]
}

// restoresStock 目标状态是否需要回补库存
func restoresStock(status string) bool {
	switch normalizeStatus(status) {
	case constants.OrderStatusCancelled, constants.OrderStatusRefunded:
		return true
	}
	return false
}

// isTerminalStatus 是否终态
func isTerminalStatus(status string) bool {
	_, ok := allowedTransitions[normalizeStatus(status)]
	return !ok
}
