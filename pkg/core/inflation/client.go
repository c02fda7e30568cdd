// Package inflation looks up the latest monthly IPCA rate published by the Banco Central do
// Brasil time-series service (SGS).
package inflation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"obra_tracker/pkg/core/cache"
	"obra_tracker/pkg/core/utils"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.bcb.gov.br"
	// IPCA monthly variation, percent.
	ipcaSeriesPath = "/dados/serie/bcdata.sgs.433/dados/ultimos/1"
	cacheKey       = "inflation:ipca:monthly"
	CacheTTL       = 12 * time.Hour
)

// RateSource yields a monthly inflation rate as a fraction (0.0044 for 0.44%).
type RateSource interface {
	MonthlyRate(ctx context.Context) (float64, error)
}

type sgsPoint struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

// Client fetches the rate over HTTP and keeps it in a Cache.
type Client struct {
	http  *resty.Client
	cache cache.Cache
}

// NewClient builds a client for baseURL. A nil cache disables caching.
func NewClient(baseURL string, c cache.Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json")
	return &Client{http: httpClient, cache: c}
}

// MonthlyRate returns the last published IPCA monthly variation as a fraction.
func (c *Client) MonthlyRate(ctx context.Context) (float64, error) {
	if c.cache != nil {
		if v, err := c.cache.Get(ctx, cacheKey); err == nil {
			if rate, perr := strconv.ParseFloat(v, 64); perr == nil {
				return rate, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			utils.Logger.WithError(err).Warn("Inflation cache read failed")
		}
	}

	var points []sgsPoint
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("formato", "json").
		ForceContentType("application/json").
		SetResult(&points).
		Get(ipcaSeriesPath)
	if err != nil {
		return 0, fmt.Errorf("%w: inflation lookup: %v", utils.ErrExternalServiceFailure, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("%w: inflation lookup returned %s", utils.ErrExternalServiceFailure, resp.Status())
	}
	if len(points) == 0 {
		return 0, fmt.Errorf("%w: inflation series is empty", utils.ErrExternalServiceFailure)
	}

	rate, err := ParsePercent(points[len(points)-1].Valor)
	if err != nil {
		return 0, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, strconv.FormatFloat(rate, 'f', -1, 64), CacheTTL); err != nil {
			utils.Logger.WithError(err).Warn("Inflation cache write failed")
		}
	}
	utils.Logger.WithFields(logrus.Fields{
		"date": points[len(points)-1].Data,
		"rate": rate,
	}).Info("Fetched monthly IPCA")
	return rate, nil
}

// ParsePercent converts an SGS percent string ("0.44" or "0,44") to a fraction.
func ParsePercent(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return 0, fmt.Errorf("invalid inflation value %q: %w", s, err)
	}
	rate, _ := d.Div(decimal.NewFromInt(100)).Float64()
	return rate, nil
}

// RateOrDefault asks src for the rate and falls back when it is nil or fails.
func RateOrDefault(ctx context.Context, src RateSource, fallback float64) float64 {
	if src == nil {
		return fallback
	}
	rate, err := src.MonthlyRate(ctx)
	if err != nil {
		utils.Logger.WithError(err).WithField("fallback", fallback).Warn("Using default monthly inflation")
		return fallback
	}
	return rate
}

// Fixed is a RateSource that always returns the same rate.
type Fixed float64

func (f Fixed) MonthlyRate(context.Context) (float64, error) { return float64(f), nil }
