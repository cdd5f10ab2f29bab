package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUnavailable возвращается при любом сбое запроса погоды.
// Для движка диалога это ожидаемая деградация, а не ошибка системы.
var ErrUnavailable = errors.New("weather unavailable")

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	requestTimeout = 10 * time.Second
)

// Conditions — текущие погодные условия в точке
type Conditions struct {
	Description string
	Temp        float64 // °C
}

// Summary возвращает строку вида «снег, -3.5°C» для записи в тренировку
func (c *Conditions) Summary() string {
	if c.Description == "" {
		return fmt.Sprintf("%+.1f°C", c.Temp)
	}
	return fmt.Sprintf("%s, %+.1f°C", c.Description, c.Temp)
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Current возвращает текущую погоду по координатам.
// Один запрос без повторов; любой сбой превращается в ErrUnavailable.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*Conditions, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", "ru")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	cond := &Conditions{Temp: body.Main.Temp}
	if len(body.Weather) > 0 {
		cond.Description = body.Weather[0].Description
	}
	return cond, nil
}
