// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

const (
	PolicyTail     = "tail"
	PolicyRandom   = "random"
	PolicyFrequent = "frequent"
	PolicyRatio    = "ratio"

	UserSourceReview = "review"
	UserSourceUser   = "user"

	BlobPOSIX = "posix"
	BlobS3    = "s3"
	BlobGCS   = "gcs"
	BlobAzure = "azure"
)

// Config is the configuration for all pipeline stages.
type Config struct {
	Jobs     int            `mapstructure:"jobs" validate:"gte=1"`
	Input    InputConfig    `mapstructure:"input"`
	Index    IndexConfig    `mapstructure:"index"`
	Split    SplitConfig    `mapstructure:"split"`
	Output   OutputConfig   `mapstructure:"output"`
	Features FeaturesConfig `mapstructure:"features"`
	Blob     BlobConfig     `mapstructure:"blob"`
}

type InputConfig struct {
	ReviewFile    string `mapstructure:"review_file"`
	BusinessFile  string `mapstructure:"business_file"`
	UserFile      string `mapstructure:"user_file"`
	AllowListFile string `mapstructure:"allow_list_file"`
	Filter        string `mapstructure:"filter"`
	Progress      bool   `mapstructure:"progress"`
}

type IndexConfig struct {
	UserIndexFile     string `mapstructure:"user_index_file" validate:"required"`
	BusinessIndexFile string `mapstructure:"business_index_file" validate:"required"`
	UserSource        string `mapstructure:"user_source" validate:"oneof=review user"`
}

type SplitConfig struct {
	Policy   string         `mapstructure:"policy" validate:"oneof=tail random frequent ratio"`
	Seed     int64          `mapstructure:"seed"`
	Tail     TailConfig     `mapstructure:"tail"`
	Random   RandomConfig   `mapstructure:"random"`
	Frequent FrequentConfig `mapstructure:"frequent"`
	Ratio    RatioConfig    `mapstructure:"ratio"`
}

// TailConfig holds back the newest edges: Skip newest edges are kept for
// training, the TestSize edges before them are the test set and the
// ValidationSize edges before the test set are the validation set.
type TailConfig struct {
	TestSize       int `mapstructure:"test_size" validate:"gte=0"`
	ValidationSize int `mapstructure:"validation_size" validate:"gte=0"`
	Skip           int `mapstructure:"skip" validate:"gte=0"`
}

type RandomConfig struct {
	TestSize       int `mapstructure:"test_size" validate:"gte=0"`
	ValidationSize int `mapstructure:"validation_size" validate:"gte=0"`
}

type FrequentConfig struct {
	TestSize       int `mapstructure:"test_size" validate:"gte=0"`
	ValidationSize int `mapstructure:"validation_size" validate:"gte=0"`
	MinReviews     int `mapstructure:"min_reviews" validate:"gte=1"`
}

type RatioConfig struct {
	TrainRatio float64 `mapstructure:"train_ratio" validate:"gt=0,lte=1"`
}

type OutputConfig struct {
	Dir            string `mapstructure:"dir" validate:"required"`
	GraphFile      string `mapstructure:"graph_file" validate:"required"`
	TrainFile      string `mapstructure:"train_file" validate:"required"`
	ValidationFile string `mapstructure:"validation_file" validate:"required"`
	TestFile       string `mapstructure:"test_file" validate:"required"`
	AllowListFile  string `mapstructure:"allow_list_file" validate:"required"`
	ManifestFile   string `mapstructure:"manifest_file"`
	Header         bool   `mapstructure:"header"`
}

// Path returns the path of an output file under the output directory.
func (c *OutputConfig) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir, name)
}

type FeaturesConfig struct {
	Smoothing      int      `mapstructure:"smoothing" validate:"gte=1"`
	TopBusinesses  int      `mapstructure:"top_businesses" validate:"gte=0"`
	TimelineFile   string   `mapstructure:"timeline_file"`
	RatingsFile    string   `mapstructure:"ratings_file"`
	VocabularySize int      `mapstructure:"vocabulary_size" validate:"gte=0"`
	MinTokenLength int      `mapstructure:"min_token_length" validate:"gte=1"`
	StopWords      []string `mapstructure:"stop_words"`
	VectorsFile    string   `mapstructure:"vectors_file"`
	VocabularyFile string   `mapstructure:"vocabulary_file"`
}

type BlobConfig struct {
	Type  string          `mapstructure:"type" validate:"omitempty,oneof=posix s3 gcs azure"`
	Dir   string          `mapstructure:"dir" validate:"required_if=Type posix"`
	S3    S3Config        `mapstructure:"s3"`
	GCS   GCSConfig       `mapstructure:"gcs"`
	Azure AzureBlobConfig `mapstructure:"azure"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type GCSConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type AzureBlobConfig struct {
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	Endpoint         string `mapstructure:"endpoint"`
	ConnectionString string `mapstructure:"connection_string"`
	Container        string `mapstructure:"container"`
	Prefix           string `mapstructure:"prefix"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Jobs: 1,
		Input: InputConfig{
			ReviewFile:   "yelp_academic_dataset_review.json",
			BusinessFile: "yelp_academic_dataset_business.json",
			UserFile:     "yelp_academic_dataset_user.json",
		},
		Index: IndexConfig{
			UserIndexFile:     "user_id2num.bin",
			BusinessIndexFile: "business_id2num.bin",
			UserSource:        UserSourceReview,
		},
		Split: SplitConfig{
			Policy: PolicyTail,
			Tail: TailConfig{
				TestSize:       1000,
				ValidationSize: 10000,
				Skip:           1,
			},
			Random: RandomConfig{
				TestSize:       10000,
				ValidationSize: 10000,
			},
			Frequent: FrequentConfig{
				TestSize:       100,
				ValidationSize: 1000,
				MinReviews:     5,
			},
			Ratio: RatioConfig{
				TrainRatio: 0.66,
			},
		},
		Output: OutputConfig{
			Dir:            ".",
			GraphFile:      "graph_mm",
			TrainFile:      "test_graph_mm",
			ValidationFile: "test_graph_mme",
			TestFile:       "test_graph",
			AllowListFile:  "frequent.users",
			ManifestFile:   "manifest.json",
			Header:         true,
		},
		Features: FeaturesConfig{
			Smoothing:      20,
			TopBusinesses:  20,
			TimelineFile:   "timeline.csv",
			RatingsFile:    "ratings.csv",
			VocabularySize: 10000,
			MinTokenLength: 2,
			StopWords:      []string{"a", "an", "and", "are", "at", "be", "but", "for", "in", "is", "it", "of", "on", "or", "that", "the", "this", "to", "was", "with"},
			VectorsFile:    "vectors.txt",
			VocabularyFile: "vocabulary.bin",
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	v.SetDefault("jobs", defaultConfig.Jobs)
	// [input]
	v.SetDefault("input.review_file", defaultConfig.Input.ReviewFile)
	v.SetDefault("input.business_file", defaultConfig.Input.BusinessFile)
	v.SetDefault("input.user_file", defaultConfig.Input.UserFile)
	v.SetDefault("input.allow_list_file", defaultConfig.Input.AllowListFile)
	v.SetDefault("input.filter", defaultConfig.Input.Filter)
	v.SetDefault("input.progress", defaultConfig.Input.Progress)
	// [index]
	v.SetDefault("index.user_index_file", defaultConfig.Index.UserIndexFile)
	v.SetDefault("index.business_index_file", defaultConfig.Index.BusinessIndexFile)
	v.SetDefault("index.user_source", defaultConfig.Index.UserSource)
	// [split]
	v.SetDefault("split.policy", defaultConfig.Split.Policy)
	v.SetDefault("split.seed", defaultConfig.Split.Seed)
	v.SetDefault("split.tail.test_size", defaultConfig.Split.Tail.TestSize)
	v.SetDefault("split.tail.validation_size", defaultConfig.Split.Tail.ValidationSize)
	v.SetDefault("split.tail.skip", defaultConfig.Split.Tail.Skip)
	v.SetDefault("split.random.test_size", defaultConfig.Split.Random.TestSize)
	v.SetDefault("split.random.validation_size", defaultConfig.Split.Random.ValidationSize)
	v.SetDefault("split.frequent.test_size", defaultConfig.Split.Frequent.TestSize)
	v.SetDefault("split.frequent.validation_size", defaultConfig.Split.Frequent.ValidationSize)
	v.SetDefault("split.frequent.min_reviews", defaultConfig.Split.Frequent.MinReviews)
	v.SetDefault("split.ratio.train_ratio", defaultConfig.Split.Ratio.TrainRatio)
	// [output]
	v.SetDefault("output.dir", defaultConfig.Output.Dir)
	v.SetDefault("output.graph_file", defaultConfig.Output.GraphFile)
	v.SetDefault("output.train_file", defaultConfig.Output.TrainFile)
	v.SetDefault("output.validation_file", defaultConfig.Output.ValidationFile)
	v.SetDefault("output.test_file", defaultConfig.Output.TestFile)
	v.SetDefault("output.allow_list_file", defaultConfig.Output.AllowListFile)
	v.SetDefault("output.manifest_file", defaultConfig.Output.ManifestFile)
	v.SetDefault("output.header", defaultConfig.Output.Header)
	// [features]
	v.SetDefault("features.smoothing", defaultConfig.Features.Smoothing)
	v.SetDefault("features.top_businesses", defaultConfig.Features.TopBusinesses)
	v.SetDefault("features.timeline_file", defaultConfig.Features.TimelineFile)
	v.SetDefault("features.ratings_file", defaultConfig.Features.RatingsFile)
	v.SetDefault("features.vocabulary_size", defaultConfig.Features.VocabularySize)
	v.SetDefault("features.min_token_length", defaultConfig.Features.MinTokenLength)
	v.SetDefault("features.stop_words", defaultConfig.Features.StopWords)
	v.SetDefault("features.vectors_file", defaultConfig.Features.VectorsFile)
	v.SetDefault("features.vocabulary_file", defaultConfig.Features.VocabularyFile)
	// [blob]
	v.SetDefault("blob.type", defaultConfig.Blob.Type)
	v.SetDefault("blob.dir", defaultConfig.Blob.Dir)
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.access_key_id", "")
	v.SetDefault("blob.s3.secret_access_key", "")
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.prefix", "")
	v.SetDefault("blob.s3.use_ssl", false)
	v.SetDefault("blob.gcs.bucket", "")
	v.SetDefault("blob.gcs.prefix", "")
	v.SetDefault("blob.gcs.credentials_file", "")
	v.SetDefault("blob.azure.account_name", "")
	v.SetDefault("blob.azure.account_key", "")
	v.SetDefault("blob.azure.endpoint", "")
	v.SetDefault("blob.azure.connection_string", "")
	v.SetDefault("blob.azure.container", "")
	v.SetDefault("blob.azure.prefix", "")
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("REVIEWGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadConfig loads configuration from a TOML/YAML file, environment variables
// (REVIEWGRAPH_SPLIT_POLICY overrides split.policy) and defaults. An empty path
// loads defaults and environment variables only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	bindEnv(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "read config %s", path)
		}
	}
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks value ranges of the configuration.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Annotate(err, "invalid config")
	}
	return nil
}
