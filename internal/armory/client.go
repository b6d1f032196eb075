package armory

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"overwatch-telegram-bot/internal/metrics"
	"overwatch-telegram-bot/internal/types"
)

const (
	DefaultBaseURL = "https://webapi.blizzard.cn/ow-armory-server/"

	// gameMode is the competitive queue the leaderboard is queried for.
	gameMode = "jingji"
	// allRanksMMR is the mmr value the armory uses for the aggregate of all ranks.
	allRanksMMR = "-127"

	userAgent = "OverwatchTelegramBot/1.0"
)

// Config of the armory client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Blizzard CN armory API.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
}

// NewClient creates new armory client
func NewClient(c Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = strings.TrimRight(DefaultBaseURL, "/")
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

// FetchBaseData loads the season list and the hero roster. It does not cache.
func (c *Client) FetchBaseData(ctx context.Context) (types.BaseData, error) {
	body, err := c.get(ctx, payloadIndex, c.baseURL+"/index")
	if err != nil {
		return types.BaseData{}, err
	}
	index, err := ParseIndex(body)
	if err != nil {
		return types.BaseData{}, err
	}

	body, err = c.get(ctx, payloadHeroConfigs, index.HeroConfigsURL)
	if err != nil {
		return types.BaseData{}, err
	}
	heroes, err := ParseHeroConfigs(body)
	if err != nil {
		return types.BaseData{}, err
	}

	log.Debugf("armory base data: %d seasons, %d heroes", len(index.Seasons), len(heroes))
	return types.BaseData{
		Seasons: index.Seasons,
		Heroes:  heroes,
	}, nil
}

// FetchLeaderboard loads the per-hero ratios of a season. An empty rank
// queries the aggregate of all ranks.
func (c *Client) FetchLeaderboard(ctx context.Context, season string, rank types.Rank) ([]types.LeaderboardEntry, error) {
	if season == "" {
		return nil, errors.New("season is required")
	}

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("season", season)
	args.Set("mmr", MMR(rank))
	args.Set("game_mode", gameMode)

	body, err := c.get(ctx, payloadLeaderboard, c.baseURL+"/hero_leaderboard?"+args.String())
	if err != nil {
		return nil, err
	}
	return ParseLeaderboard(body)
}

// FetchPicture downloads a hero artwork.
func (c *Client) FetchPicture(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, "picture", url)
}

// MMR encodes a rank the way the leaderboard endpoint expects it.
func MMR(rank types.Rank) string {
	if rank == "" {
		return allRanksMMR
	}
	return rank.Title()
}

func (c *Client) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(userAgent)
	req.Header.Set("Accept", "application/json, */*")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}

	log.Debugf("armory GET %s", url)
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, errors.Wrapf(ErrUpstreamUnavailable, "GET %s: %v", url, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		metrics.UpstreamRequests.WithLabelValues(endpoint, "status_error").Inc()
		return nil, errors.Wrapf(ErrUpstreamUnavailable, "GET %s: status %d", url, status)
	}

	metrics.UpstreamRequests.WithLabelValues(endpoint, "ok").Inc()

	// resp is released on return, so the body has to be copied out.
	body := append([]byte(nil), resp.Body()...)
	return body, nil
}
