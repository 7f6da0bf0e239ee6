package analytics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Verdicts for the stationarity test.
const (
	VerdictStationary    = "stationary"
	VerdictNonStationary = "non-stationary"
	VerdictInsufficient  = "insufficient data"
)

// minADFObservations is the series length below which the test is not attempted.
const minADFObservations = 10

// StationarityResult holds the outcome of an augmented Dickey-Fuller test.
// TestStatistic and PValue are NaN when Verdict is "insufficient data".
type StationarityResult struct {
	TestStatistic  float64
	PValue         float64
	UsedLag        int                // lagged-difference order selected by AIC
	NObs           int                // observations used in the test regression
	CriticalValues map[string]float64 // confidence-level label ("1%", "5%", "10%") to threshold
	Verdict        string
}

// ADFTest runs the augmented Dickey-Fuller unit-root test on a series with a
// constant-only regression and AIC-selected lag order. The verdict is
// "stationary" when the approximate MacKinnon p-value is below 0.05.
//
// Series shorter than 10 observations, and series whose test regression is
// degenerate (e.g. constant input), return an explicit insufficient-data
// result instead of an error.
func ADFTest(series []float64) StationarityResult {
	n := len(series)
	if n < minADFObservations {
		return insufficientResult()
	}

	// First differences: diff[i] = series[i+1] - series[i]
	diff := make([]float64, n-1)
	for i := range diff {
		diff[i] = series[i+1] - series[i]
	}

	// Schwert's rule bounds the lag search; keep enough observations to fit.
	maxLag := int(math.Floor(12 * math.Pow(float64(n)/100, 0.25)))
	if limit := n/2 - 2; maxLag > limit {
		maxLag = limit
	}
	if maxLag < 0 {
		maxLag = 0
	}

	// Pick the lag order by AIC over a common sample so fits are comparable.
	bestLag, ok := selectLagByAIC(series, diff, maxLag)
	if !ok {
		return insufficientResult()
	}

	// Refit at the chosen lag using all available observations.
	tau, nobs, ok := adfRegression(series, diff, bestLag, bestLag)
	if !ok {
		return insufficientResult()
	}

	pValue := mackinnonP(tau)
	verdict := VerdictNonStationary
	if pValue < 0.05 {
		verdict = VerdictStationary
	}

	return StationarityResult{
		TestStatistic:  tau,
		PValue:         pValue,
		UsedLag:        bestLag,
		NObs:           nobs,
		CriticalValues: mackinnonCriticalValues(nobs),
		Verdict:        verdict,
	}
}

func insufficientResult() StationarityResult {
	return StationarityResult{
		TestStatistic:  math.NaN(),
		PValue:         math.NaN(),
		CriticalValues: map[string]float64{},
		Verdict:        VerdictInsufficient,
	}
}

// selectLagByAIC fits the test regression for every lag candidate on the same
// sample (starting at maxLag) and returns the AIC-minimizing lag.
func selectLagByAIC(series, diff []float64, maxLag int) (int, bool) {
	bestLag := -1
	bestAIC := math.Inf(1)

	for lag := 0; lag <= maxLag; lag++ {
		aic, ok := adfAIC(series, diff, lag, maxLag)
		if !ok {
			continue
		}
		if aic < bestAIC {
			bestAIC = aic
			bestLag = lag
		}
	}
	if bestLag < 0 {
		return 0, false
	}
	return bestLag, true
}

// adfAIC fits the ADF regression at the given lag over the sample starting at
// `start` and returns the Akaike criterion for the fit.
func adfAIC(series, diff []float64, lag, start int) (float64, bool) {
	X, dep := adfDesign(series, diff, lag, start)
	if X == nil {
		return 0, false
	}

	fit, ok := olsFit(X, dep)
	if !ok {
		return 0, false
	}

	m := float64(len(dep))
	k := float64(lag + 2) // level term, lagged diffs, constant
	if fit.rss <= 0 {
		return 0, false // perfect fit: the regression is degenerate
	}
	return m*math.Log(fit.rss/m) + 2*k, true
}

// adfRegression fits the ADF regression at the given lag and returns the tau
// statistic on the level coefficient and the number of observations used.
func adfRegression(series, diff []float64, lag, start int) (tau float64, nobs int, ok bool) {
	X, dep := adfDesign(series, diff, lag, start)
	if X == nil {
		return 0, 0, false
	}

	fit, ok := olsFit(X, dep)
	if !ok {
		return 0, 0, false
	}
	if fit.se[0] == 0 || math.IsNaN(fit.se[0]) {
		return 0, 0, false
	}

	return fit.beta[0] / fit.se[0], len(dep), true
}

// adfDesign builds the regression matrix for
//
//	Δy_t = γ·y_{t-1} + Σ φ_j·Δy_{t-j} + c + ε_t
//
// over observations starting at diff index `start`. Column 0 is the level
// term y_{t-1}, columns 1..lag the lagged differences, the last the constant.
func adfDesign(series, diff []float64, lag, start int) (*mat.Dense, []float64) {
	m := len(diff) - start
	k := lag + 2
	if m <= k {
		return nil, nil // not enough observations for this many regressors
	}

	X := mat.NewDense(m, k, nil)
	dep := make([]float64, m)
	for row := 0; row < m; row++ {
		t := start + row
		dep[row] = diff[t]
		X.Set(row, 0, series[t])
		for j := 1; j <= lag; j++ {
			X.Set(row, j, diff[t-j])
		}
		X.Set(row, k-1, 1)
	}
	return X, dep
}

type olsResult struct {
	beta []float64 // coefficient estimates
	se   []float64 // coefficient standard errors
	rss  float64   // residual sum of squares
}

// olsFit solves the least-squares problem via QR and derives coefficient
// standard errors from (XᵀX)⁻¹. A singular design reports !ok.
func olsFit(X *mat.Dense, y []float64) (olsResult, bool) {
	m, k := X.Dims()
	if m <= k {
		return olsResult{}, false
	}

	var qr mat.QR
	qr.Factorize(X)

	yVec := mat.NewVecDense(m, y)
	var betaVec mat.VecDense
	if err := qr.SolveVecTo(&betaVec, false, yVec); err != nil {
		return olsResult{}, false
	}

	// Residuals and RSS
	var fitted mat.VecDense
	fitted.MulVec(X, &betaVec)
	rss := 0.0
	for i := 0; i < m; i++ {
		r := y[i] - fitted.AtVec(i)
		rss += r * r
	}
	sigma2 := rss / float64(m-k)

	// Covariance of the estimates: sigma² (XᵀX)⁻¹
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return olsResult{}, false
	}

	beta := make([]float64, k)
	se := make([]float64, k)
	for j := 0; j < k; j++ {
		beta[j] = betaVec.AtVec(j)
		se[j] = math.Sqrt(sigma2 * xtxInv.At(j, j))
	}

	return olsResult{beta: beta, se: se, rss: rss}, true
}

// MacKinnon approximate asymptotic p-value for the constant-only regression.
// Outside the tabulated tau range the p-value saturates at 0 or 1.
var (
	adfTauMax   = 2.74
	adfTauMin   = -18.83
	adfTauStar  = -1.61
	adfTauSmall = []float64{2.1659, 1.4412, 0.038269}
	adfTauLarge = []float64{1.7339, 0.93202, -0.12745, -0.010368}
)

func mackinnonP(tau float64) float64 {
	switch {
	case tau > adfTauMax:
		return 1.0
	case tau < adfTauMin:
		return 0.0
	}

	coeffs := adfTauLarge
	if tau <= adfTauStar {
		coeffs = adfTauSmall
	}
	return normCDF(polyval(coeffs, tau))
}

// MacKinnon (2010) finite-sample response surface for the constant-only
// regression, one variable.
var adfCriticalSurface = map[string][4]float64{
	"1%":  {-3.43035, -6.5393, -16.786, -79.433},
	"5%":  {-2.86154, -2.8903, -4.234, -40.040},
	"10%": {-2.56677, -1.5384, -2.809, 0},
}

func mackinnonCriticalValues(nobs int) map[string]float64 {
	n := float64(nobs)
	out := make(map[string]float64, len(adfCriticalSurface))
	for label, b := range adfCriticalSurface {
		out[label] = b[0] + b[1]/n + b[2]/(n*n) + b[3]/(n*n*n)
	}
	return out
}

// polyval evaluates a polynomial with ascending-order coefficients.
func polyval(coeffs []float64, x float64) float64 {
	sum := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		sum = sum*x + coeffs[i]
	}
	return sum
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
