package service

import (
	"github.com/AlibekovAA/linkmark/internal/observability/metrics"
)

func incrementUsersRegistered() {
	metrics.UsersRegistered.Inc()
}

func incrementLoginFailures(reason string) {
	metrics.LoginFailures.WithLabelValues(reason).Inc()
}

func incrementAccessTokensRevoked() {
	metrics.AccessTokensRevoked.Inc()
}

func incrementAccessTokensIssued() {
	metrics.AccessTokensIssued.Inc()
}
