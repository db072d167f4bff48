// Package forecast trains short-horizon price models on simulated market
// history and produces recursive multi-day forecasts.
//
// One ordinary-least-squares linear model is trained per carrier, with no
// parameter sharing across carriers. Features are lag-1/7/30 prices,
// sinusoidal month and day-of-week encodings, and binary flags for each
// seasonal event's nominal month window. Features are standardized at
// training time and the captured parameters are reapplied identically at
// prediction time.
//
// Lag features are built per (carrier, route) series so lags never cross
// route boundaries; the per-route feature rows are then pooled into the
// carrier's single regression.
//
// Recursive forecasting maintains a bounded ring buffer of the most recent
// 30 prices (real history first, then the model's own predictions) and
// advances one day at a time, so each step's output becomes a lag input
// for the next.
package forecast
