// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	urlimageNamespace = "urlimage"

	cacheSubsystem  = "cache"
	loaderSubsystem = "loader"

	// cache metric names
	CacheMetricHitsTotal      = "hits_total"
	CacheMetricMissesTotal    = "misses_total"
	CacheMetricEvictedTotal   = "evicted_total"
	CacheMetricResidentBytes  = "resident_bytes"
	CacheMetricResidentImages = "resident_images"

	// loader metric names
	LoaderMetricFetchTotal     = "fetch_total"
	LoaderMetricFetchLatency   = "fetch_latency"
	LoaderMetricCoalescedTotal = "coalesced_total"
	LoaderMetricInflight       = "inflight_requests"

	// loader metric labels
	LoaderLabelStatus = "status"

	// loader metric values
	LoaderStatusLoaded = "loaded"
	LoaderStatusFailed = "failed"
)

// buckets in milliseconds, image fetches are expected within seconds
var buckets = prometheus.ExponentialBuckets(1, 2, 16)

var CacheHitsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: urlimageNamespace,
		Subsystem: cacheSubsystem,
		Name:      CacheMetricHitsTotal,
		Help:      "Total number of cache lookups served from resident entries",
	},
)

var CacheMissesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: urlimageNamespace,
		Subsystem: cacheSubsystem,
		Name:      CacheMetricMissesTotal,
		Help:      "Total number of cache lookups that found no entry",
	},
)

var CacheEvictedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: urlimageNamespace,
		Subsystem: cacheSubsystem,
		Name:      CacheMetricEvictedTotal,
		Help:      "Total number of entries evicted to stay under capacity",
	},
)

var CacheResidentBytes = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: urlimageNamespace,
		Subsystem: cacheSubsystem,
		Name:      CacheMetricResidentBytes,
		Help:      "Approximate byte cost of all resident entries",
	},
)

var CacheResidentImages = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: urlimageNamespace,
		Subsystem: cacheSubsystem,
		Name:      CacheMetricResidentImages,
		Help:      "Number of resident entries",
	},
)

var LoaderFetchTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: urlimageNamespace,
		Subsystem: loaderSubsystem,
		Name:      LoaderMetricFetchTotal,
		Help:      "Total number of network fetches by terminal status",
	}, []string{
		LoaderLabelStatus,
	},
)

var LoaderFetchLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: urlimageNamespace,
		Subsystem: loaderSubsystem,
		Name:      LoaderMetricFetchLatency,
		Help:      "Latency in milliseconds from fetch start to decoded payload",
		Buckets:   buckets,
	},
)

var LoaderCoalescedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: urlimageNamespace,
		Subsystem: loaderSubsystem,
		Name:      LoaderMetricCoalescedTotal,
		Help:      "Total number of load requests attached to an already in-flight fetch",
	},
)

var LoaderInflight = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: urlimageNamespace,
		Subsystem: loaderSubsystem,
		Name:      LoaderMetricInflight,
		Help:      "Number of keys with an outstanding fetch",
	},
)

// Register registers all urlimage collectors with the given registry.
func Register(r prometheus.Registerer) {
	r.MustRegister(CacheHitsTotal)
	r.MustRegister(CacheMissesTotal)
	r.MustRegister(CacheEvictedTotal)
	r.MustRegister(CacheResidentBytes)
	r.MustRegister(CacheResidentImages)
	r.MustRegister(LoaderFetchTotal)
	r.MustRegister(LoaderFetchLatency)
	r.MustRegister(LoaderCoalescedTotal)
	r.MustRegister(LoaderInflight)
}
