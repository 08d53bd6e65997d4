package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// GeolocationService resolves requester IPs through ip-api.com with a Redis
// cache in front. Complaints filed without coordinates get an approximate
// location from it.
type GeolocationService struct {
	appContext.DefaultService

	httpClient  *http.Client
	apiURL      string
	redisSvc    *RedisService
	cacheExpiry time.Duration
}

type GeolocationResult struct {
	IP         string  `json:"ip"`
	Country    string  `json:"country"`
	RegionName string  `json:"region_name"`
	City       string  `json:"city"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

const GEOLOCATION_SVC = "geolocation_svc"

func (svc GeolocationService) Id() string {
	return GEOLOCATION_SVC
}

func (svc *GeolocationService) Configure(ctx *appContext.Context) error {
	svc.redisSvc = ctx.Service(REDIS_SVC).(*RedisService)
	svc.httpClient = &http.Client{
		Timeout: 10 * time.Second,
	}
	svc.apiURL = "http://ip-api.com/json"
	svc.cacheExpiry = 24 * time.Hour // Cache for 24 hours
	return svc.DefaultService.Configure(ctx)
}

func (svc *GeolocationService) Start() error {
	return nil
}

// GetLocationByIP returns a "City, Region, Country" label for the IP.
// Failures degrade to "Unknown" instead of erroring, a complaint without a
// location label is still a valid complaint.
func (svc *GeolocationService) GetLocationByIP(ip string) (string, error) {
	if ip == "" || ip == "127.0.0.1" || ip == "::1" {
		return "Local", nil
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("geolocation:simple:%s", ip)

	// Try to get from cache first
	if svc.redisSvc != nil {
		cachedLocation, err := svc.redisSvc.Get(ctx, cacheKey)
		if err == nil && cachedLocation != "" {
			log.WithField("ip", ip).Debug("Geolocation cache hit")
			return cachedLocation, nil
		}
	}

	// Cache miss, fetch from API
	url := fmt.Sprintf("%s/%s?fields=status,country,regionName,city", svc.apiURL, ip)

	resp, err := svc.httpClient.Get(url)
	if err != nil {
		log.WithError(err).WithField("ip", ip).Error("Failed to get geolocation")
		return "Unknown", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).WithField("ip", ip).Error("Geolocation API returned non-200 status")
		return "Unknown", nil
	}

	var result struct {
		Status     string `json:"status"`
		Country    string `json:"country"`
		RegionName string `json:"regionName"`
		City       string `json:"city"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.WithError(err).WithField("ip", ip).Error("Failed to decode geolocation response")
		return "Unknown", nil
	}

	if result.Status != "success" {
		log.WithField("status", result.Status).WithField("ip", ip).Warn("Geolocation lookup failed")
		return "Unknown", nil
	}

	location := ""
	if result.City != "" {
		location = result.City
	}
	if result.RegionName != "" {
		if location != "" {
			location += ", "
		}
		location += result.RegionName
	}
	if result.Country != "" {
		if location != "" {
			location += ", "
		}
		location += result.Country
	}

	if location == "" {
		location = "Unknown"
	}

	// Cache the result
	if svc.redisSvc != nil {
		if err := svc.redisSvc.Set(ctx, cacheKey, location, svc.cacheExpiry); err != nil {
			log.WithError(err).WithField("ip", ip).Warn("Failed to cache geolocation result")
		}
	}

	return location, nil
}

// GetCoordinatesByIP returns approximate coordinates for the IP, used to
// prefill complaint coordinates when the client sends none.
func (svc *GeolocationService) GetCoordinatesByIP(ip string) (*GeolocationResult, error) {
	if ip == "" || ip == "127.0.0.1" || ip == "::1" {
		return &GeolocationResult{IP: ip, City: "Local"}, nil
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("geolocation:coords:%s", ip)

	if svc.redisSvc != nil {
		var cached GeolocationResult
		err := svc.redisSvc.GetJSON(ctx, cacheKey, &cached)
		if err == nil && cached.IP != "" {
			log.WithField("ip", ip).Debug("Geolocation coordinates cache hit")
			return &cached, nil
		}
	}

	url := fmt.Sprintf("%s/%s?fields=status,country,regionName,city,lat,lon,query", svc.apiURL, ip)

	resp, err := svc.httpClient.Get(url)
	if err != nil {
		log.WithError(err).WithField("ip", ip).Error("Failed to get geolocation coordinates")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var result struct {
		Status     string  `json:"status"`
		Country    string  `json:"country"`
		RegionName string  `json:"regionName"`
		City       string  `json:"city"`
		Lat        float64 `json:"lat"`
		Lon        float64 `json:"lon"`
		Query      string  `json:"query"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.WithError(err).WithField("ip", ip).Error("Failed to decode geolocation response")
		return nil, err
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("geolocation lookup failed: %s", result.Status)
	}

	geo := &GeolocationResult{
		IP:         result.Query,
		Country:    result.Country,
		RegionName: result.RegionName,
		City:       result.City,
		Latitude:   result.Lat,
		Longitude:  result.Lon,
	}

	if svc.redisSvc != nil {
		if err := svc.redisSvc.Set(ctx, cacheKey, geo, svc.cacheExpiry); err != nil {
			log.WithError(err).WithField("ip", ip).Warn("Failed to cache geolocation coordinates")
		}
	}

	return geo, nil
}

func (svc *GeolocationService) ClearCache(ip string) error {
	if svc.redisSvc == nil {
		return fmt.Errorf("redis service not available")
	}

	ctx := context.Background()
	simpleKey := fmt.Sprintf("geolocation:simple:%s", ip)
	coordsKey := fmt.Sprintf("geolocation:coords:%s", ip)

	return svc.redisSvc.Delete(ctx, simpleKey, coordsKey)
}
