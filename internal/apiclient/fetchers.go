package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Default public API endpoints. Overridable for tests.
var (
	RandomUserBaseURL = "https://randomuser.me/api"
	CoinGeckoBaseURL  = "https://api.coingecko.com/api/v3"
	HackerNewsBaseURL = "https://hacker-news.firebaseio.com/v0"
)

// User is a trimmed random-user record.
type User struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Country string `json:"country"`
}

// RandomUsers fetches n generated user profiles.
func (c *Client) RandomUsers(ctx context.Context, n int) ([]User, error) {
	if n < 1 {
		n = 1
	}
	var payload struct {
		Results []struct {
			Name struct {
				First string `json:"first"`
				Last  string `json:"last"`
			} `json:"name"`
			Email    string `json:"email"`
			Location struct {
				Country string `json:"country"`
			} `json:"location"`
		} `json:"results"`
	}
	endpoint := fmt.Sprintf("%s/?results=%d", strings.TrimRight(RandomUserBaseURL, "/"), n)
	if err := c.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	users := make([]User, 0, len(payload.Results))
	for _, r := range payload.Results {
		users = append(users, User{
			Name:    strings.TrimSpace(r.Name.First + " " + r.Name.Last),
			Email:   r.Email,
			Country: r.Location.Country,
		})
	}
	return users, nil
}

// CoinPrice holds one coin's quote in a fiat currency.
type CoinPrice struct {
	Coin     string  `json:"coin"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

// CoinPrices fetches spot prices for the given coin IDs in one fiat currency.
func (c *Client) CoinPrices(ctx context.Context, coins []string, currency string) ([]CoinPrice, error) {
	if len(coins) == 0 {
		return nil, nil
	}
	currency = strings.ToLower(currency)
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		strings.TrimRight(CoinGeckoBaseURL, "/"),
		url.QueryEscape(strings.Join(coins, ",")),
		url.QueryEscape(currency))

	var payload map[string]map[string]float64
	if err := c.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	prices := make([]CoinPrice, 0, len(coins))
	for _, coin := range coins {
		quote, ok := payload[coin]
		if !ok {
			continue
		}
		prices = append(prices, CoinPrice{Coin: coin, Currency: currency, Price: quote[currency]})
	}
	return prices, nil
}

// Story is one Hacker News item.
type Story struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	By    string `json:"by"`
}

// TopStories fetches up to n current top stories.
func (c *Client) TopStories(ctx context.Context, n int) ([]Story, error) {
	if n < 1 {
		n = 10
	}
	var ids []int
	if err := c.GetJSON(ctx, joinURL(HackerNewsBaseURL, "topstories.json"), &ids); err != nil {
		return nil, err
	}
	if len(ids) > n {
		ids = ids[:n]
	}
	stories := make([]Story, 0, len(ids))
	for _, id := range ids {
		var story Story
		if err := c.GetJSON(ctx, joinURL(HackerNewsBaseURL, fmt.Sprintf("item/%d.json", id)), &story); err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, nil
}
