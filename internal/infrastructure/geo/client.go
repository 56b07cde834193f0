package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client calls the external weather and reverse-geocoding APIs. Both are
// plain REST endpoints keyed by query parameter.
type Client struct {
	weatherURL string
	weatherKey string
	geocodeURL string
	geocodeKey string
	httpClient *http.Client
}

func NewClient(weatherURL, weatherKey, geocodeURL, geocodeKey string) *Client {
	return &Client{
		weatherURL: weatherURL,
		weatherKey: weatherKey,
		geocodeURL: geocodeURL,
		geocodeKey: geocodeKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type Weather struct {
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	TempCelsius float64 `json:"tempCelsius"`
	WindKph     float64 `json:"windKph"`
}

// CurrentWeather fetches conditions at the given coordinates
func (c *Client) CurrentWeather(ctx context.Context, lat, lng float64) (*Weather, error) {
	endpoint := fmt.Sprintf("%s?lat=%f&lon=%f&units=metric&appid=%s", c.weatherURL, lat, lng, c.weatherKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var result struct {
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("weather response parse failed: %w", err)
	}

	weather := &Weather{
		TempCelsius: result.Main.Temp,
		WindKph:     result.Wind.Speed * 3.6,
	}
	if len(result.Weather) > 0 {
		weather.Condition = result.Weather[0].Main
		weather.Description = result.Weather[0].Description
	}

	return weather, nil
}

// ReverseGeocode resolves coordinates to a display address
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lng))
	params.Set("format", "json")
	if c.geocodeKey != "" {
		params.Set("key", c.geocodeKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode API returned status %d", resp.StatusCode)
	}

	var result struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("geocode response parse failed: %w", err)
	}

	return result.DisplayName, nil
}
