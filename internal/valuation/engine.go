package valuation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"sateihub/server/config"
	"sateihub/server/internal/correction"
	"sateihub/server/internal/insight"
	"sateihub/server/internal/models"
	"sateihub/server/internal/region"
	"sateihub/server/internal/similarity"
	"sateihub/server/internal/source"
	"sateihub/server/internal/stats"
)

// ErrInvalidRequest is the only error Evaluate returns. Everything
// downstream of validation is absorbed by fallback paths.
var ErrInvalidRequest = errors.New("invalid valuation request")

// State tracks where a request is in its lifecycle, for logging.
type State int

const (
	StateResolvingRegion State = iota
	StateFetchingComparables
	StateBroadeningScope
	StateCorrecting
	StateAggregating
	StateAnalyzing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateResolvingRegion:
		return "resolving_region"
	case StateFetchingComparables:
		return "fetching_comparables"
	case StateBroadeningScope:
		return "broadening_scope"
	case StateCorrecting:
		return "correcting"
	case StateAggregating:
		return "aggregating"
	case StateAnalyzing:
		return "analyzing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Default estimate constants, used when no comparable survives
// correction.
const (
	defaultEstimatePerSqm = 150_000
	estimateIncrement     = 10_000
)

// Options configures an Engine. Zero-value fields fall back to
// sensible defaults, so tests only set what they exercise.
type Options struct {
	Logger    *logrus.Logger
	Resolver  *region.Resolver
	Live      source.ComparableSource
	Synthetic *source.SyntheticSource
	Estimator *similarity.Estimator
	Model     *correction.Model
	Stats     *stats.Aggregator
	Insights  *insight.Analyzer

	// Seed feeds a fresh *rand.Rand per request. A fixed seed makes
	// Evaluate fully deterministic for identical inputs and data.
	Seed func() int64

	FetchWorkers    int
	FetchTimeout    time.Duration
	RequestDeadline time.Duration
	TopComparables  int
}

// Engine runs one full valuation cycle per Evaluate call. Instances are
// safe for concurrent use: requests share only immutable lookup tables.
type Engine struct {
	logger    *logrus.Logger
	resolver  *region.Resolver
	live      source.ComparableSource
	synthetic *source.SyntheticSource
	estimator *similarity.Estimator
	model     *correction.Model
	stats     *stats.Aggregator
	insights  *insight.Analyzer
	validate  *validator.Validate
	seed      func() int64

	fetchWorkers    int
	fetchTimeout    time.Duration
	requestDeadline time.Duration
	topComparables  int
}

func NewEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Resolver == nil {
		opts.Resolver = region.NewResolver(opts.Logger, region.NewMapCache())
	}
	if opts.Synthetic == nil {
		opts.Synthetic = source.NewSyntheticSource()
	}
	if opts.Estimator == nil {
		opts.Estimator = similarity.NewEstimator()
	}
	if opts.Model == nil {
		opts.Model = correction.NewModel()
	}
	if opts.Stats == nil {
		opts.Stats = stats.NewAggregator()
	}
	if opts.Insights == nil {
		opts.Insights = insight.NewAnalyzer()
	}
	if opts.Seed == nil {
		opts.Seed = func() int64 { return time.Now().UnixNano() }
	}
	if opts.FetchWorkers <= 0 {
		opts.FetchWorkers = 4
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}
	if opts.RequestDeadline <= 0 {
		opts.RequestDeadline = 60 * time.Second
	}
	if opts.TopComparables <= 0 {
		opts.TopComparables = 5
	}

	return &Engine{
		logger:          opts.Logger,
		resolver:        opts.Resolver,
		live:            opts.Live,
		synthetic:       opts.Synthetic,
		estimator:       opts.Estimator,
		model:           opts.Model,
		stats:           opts.Stats,
		insights:        opts.Insights,
		validate:        validator.New(),
		seed:            opts.Seed,
		fetchWorkers:    opts.FetchWorkers,
		fetchTimeout:    opts.FetchTimeout,
		requestDeadline: opts.RequestDeadline,
		topComparables:  opts.TopComparables,
	}
}

// Evaluate runs the full cycle: resolve region, fetch comparables
// (broadening to neighboring regions when the sample is short), correct,
// aggregate and analyze. It always produces a result for a valid
// request; data problems degrade the result instead of failing it.
func (e *Engine) Evaluate(ctx context.Context, req models.ValuationRequest) (models.ValuationResult, error) {
	if err := e.validate.Struct(req); err != nil {
		return models.ValuationResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.PropertyType == "" {
		req.PropertyType = models.PropertyResidential
	}

	ctx, cancel := context.WithTimeout(ctx, e.requestDeadline)
	defer cancel()

	rng := rand.New(rand.NewSource(e.seed()))

	log := e.logger.WithField("address", req.Address)
	log.WithField("state", StateResolvingRegion.String()).Debug("valuation started")

	regionCode := e.resolver.Resolve(req.Address)
	profile := e.resolver.ProfileFor(regionCode)
	if req.SearchRadiusKmOverride != nil {
		profile.SearchRadiusKm = *req.SearchRadiusKmOverride
	}
	if req.LookbackMonthsOverride != nil {
		profile.LookbackMonths = *req.LookbackMonthsOverride
	}

	log = log.WithField("region_code", regionCode)
	log.WithField("state", StateFetchingComparables.String()).Debug("fetching comparables")

	valid := e.fetchValid(ctx, log, regionCode, profile)

	if len(valid) < profile.MinimumSampleSize {
		log.WithFields(logrus.Fields{
			"state":        StateBroadeningScope.String(),
			"valid_sample": len(valid),
			"minimum":      profile.MinimumSampleSize,
		}).Debug("sample below minimum, broadening to neighboring regions")
		valid = append(valid, e.fetchNeighbors(ctx, log, regionCode)...)
	}

	origin := models.OriginLive
	if len(valid) == 0 {
		log.Warn("no valid comparables after broadened fetch, generating synthetic data")
		origin = models.OriginSynthetic
		valid = e.synthetic.Generate(rng, source.SyntheticTarget{
			Address:      req.Address,
			AreaSqm:      req.AreaSqm,
			AgeYears:     req.AgeYears,
			Purpose:      req.Purpose,
			PropertyType: req.PropertyType,
		}, profile.MinimumSampleSize)
	}

	log.WithFields(logrus.Fields{
		"state":        StateCorrecting.String(),
		"valid_sample": len(valid),
		"data_origin":  origin,
	}).Debug("correcting comparables")

	target := correction.Target{AreaSqm: req.AreaSqm, AgeYears: req.AgeYears}
	corrected := make([]models.CorrectedComparable, 0, len(valid))
	for _, r := range valid {
		distance := e.estimator.PseudoDistance(rng, req.Address, r.Address)
		if distance > profile.SearchRadiusKm {
			continue
		}
		corrected = append(corrected, e.model.Correct(target, r, distance))
	}

	log.WithField("state", StateAggregating.String()).Debug("aggregating corrected prices")

	aggregate, err := e.stats.Aggregate(corrected)
	if err != nil {
		log.WithError(err).Warn("aggregation impossible, using default estimate")
		return e.defaultEstimate(req, regionCode), nil
	}

	low, high := e.stats.PriceRange(aggregate)

	log.WithField("state", StateAnalyzing.String()).Debug("deriving market insights")
	analysis := e.insights.Analyze(corrected, req.AreaSqm, req.AgeYears)

	result := models.ValuationResult{
		PriceRangeLow:   low,
		PriceRangeHigh:  high,
		ConfidenceLabel: e.stats.ConfidenceLabel(len(corrected)),
		SampleCount:     len(corrected),
		MarketTrend:     analysis.MarketTrend,
		PriceTrend:      analysis.PriceTrend,
		InvestmentValue: analysis.InvestmentValue,
		Insights:        analysis.Insights,
		DataOrigin:      origin,
		DataQuality:     dataQuality(origin, len(corrected), profile.MinimumSampleSize),
		RegionCode:      regionCode,
		Comparables:     topByCorrectedPrice(corrected, e.topComparables),
		Statistics:      aggregate,
	}

	log.WithFields(logrus.Fields{
		"state":        StateDone.String(),
		"sample_count": result.SampleCount,
		"confidence":   result.ConfidenceLabel,
		"range_low":    result.PriceRangeLow,
		"range_high":   result.PriceRangeHigh,
	}).Info("valuation completed")

	return result, nil
}

// fetchValid fans out one fetch per trailing year of the lookback
// window, bounded by the worker limit. Each call gets its own timeout;
// a failed or timed-out call contributes zero records. Results land in
// indexed slots so concatenation order never depends on scheduling.
func (e *Engine) fetchValid(ctx context.Context, log *logrus.Entry, regionCode string, profile config.RegionProfile) []models.RawComparable {
	years := lookbackYears(profile.LookbackMonths)
	currentYear := time.Now().Year()

	slots := make([][]models.RawComparable, years)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fetchWorkers)

	for i := 0; i < years; i++ {
		i := i
		g.Go(func() error {
			year := currentYear - i
			callCtx, cancel := context.WithTimeout(gctx, e.fetchTimeout)
			defer cancel()

			records, err := e.live.Fetch(callCtx, regionCode, year)
			if err != nil {
				log.WithError(err).WithField("year", year).Warn("period fetch failed, skipping")
				return nil
			}
			slots[i] = records
			return nil
		})
	}
	g.Wait()

	var all []models.RawComparable
	for _, records := range slots {
		all = append(all, records...)
	}
	return source.FilterValid(all)
}

// fetchNeighbors queries the current year for one ring of neighboring
// regions, nearest first.
func (e *Engine) fetchNeighbors(ctx context.Context, log *logrus.Entry, regionCode string) []models.RawComparable {
	neighbors := config.NeighborRegions(regionCode)
	currentYear := time.Now().Year()

	slots := make([][]models.RawComparable, len(neighbors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fetchWorkers)

	for i, neighbor := range neighbors {
		i, neighbor := i, neighbor
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, e.fetchTimeout)
			defer cancel()

			records, err := e.live.Fetch(callCtx, neighbor, currentYear)
			if err != nil {
				log.WithError(err).WithField("neighbor", neighbor).Warn("neighbor fetch failed, skipping")
				return nil
			}
			slots[i] = records
			return nil
		})
	}
	g.Wait()

	var all []models.RawComparable
	for _, records := range slots {
		all = append(all, records...)
	}
	return source.FilterValid(all)
}

// defaultEstimate is the last-resort result when not a single comparable
// survives correction: a flat per-area base depreciated by age, spread
// to a conservative range.
func (e *Engine) defaultEstimate(req models.ValuationRequest, regionCode string) models.ValuationResult {
	ageAdjustment := math.Max(0.5, 1-float64(req.AgeYears)*0.02)
	base := req.AreaSqm * defaultEstimatePerSqm * ageAdjustment

	low := floorToIncrement(int64(math.Round(base * 0.8)))
	high := floorToIncrement(int64(math.Round(base * 1.2)))
	if low < estimateIncrement {
		low = estimateIncrement
	}
	if high < low {
		high = low
	}

	return models.ValuationResult{
		PriceRangeLow:   low,
		PriceRangeHigh:  high,
		ConfidenceLabel: models.ConfidenceLow,
		SampleCount:     0,
		MarketTrend:     models.MarketStable,
		PriceTrend:      models.TrendStable,
		InvestmentValue: models.InvestmentLow,
		Insights:        []string{"No comparable transaction data was found; the estimate is derived from floor area and building age alone"},
		DataOrigin:      models.OriginSynthetic,
		DataQuality:     models.QualityFallback,
		RegionCode:      regionCode,
		Comparables:     []models.CorrectedComparable{},
	}
}

func dataQuality(origin models.DataOrigin, sampleCount, minimum int) models.DataQuality {
	if origin == models.OriginSynthetic {
		return models.QualityFallback
	}
	if sampleCount < minimum {
		return models.QualityLimited
	}
	return models.QualityGood
}

// topByCorrectedPrice returns up to n comparables by ascending corrected
// price, without mutating the input.
func topByCorrectedPrice(corrected []models.CorrectedComparable, n int) []models.CorrectedComparable {
	sorted := make([]models.CorrectedComparable, len(corrected))
	copy(sorted, corrected)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CorrectedPrice < sorted[j].CorrectedPrice
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// lookbackYears converts a months window into the number of yearly
// fetches covering it, at least one.
func lookbackYears(months int) int {
	if months <= 0 {
		return 1
	}
	return (months + 11) / 12
}

func floorToIncrement(v int64) int64 {
	return (v / estimateIncrement) * estimateIncrement
}
