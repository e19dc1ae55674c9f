package writer

import (
	"github.com/mctools/mcpl/format"
	"github.com/mctools/mcpl/internal/options"
)

// Config collects the format options a Writer freezes into the header on
// the first call to AddParticle. Fields left at their zero value mean
// "off"/"not universal", matching §4.6's schema.
type Config struct {
	Endianness format.Endianness

	Polarisation bool
	SinglePrec   bool
	UserFlags    bool

	HasUniversalPDG bool
	UniversalPDG    int32

	HasUniversalWeight bool
	UniversalWeight    float64

	SourceName []byte
	Comments   [][]byte

	BlobKeys []string
	Blobs    [][]byte
}

// NewConfig returns a Config with little-endian output and no optional
// columns, ready to have Options applied to it.
func NewConfig() *Config {
	return &Config{Endianness: format.Little}
}

// Option configures a Config before a Writer is created from it.
type Option = options.Option[*Config]

// WithPolarisation enables per-particle polarisation storage.
func WithPolarisation() Option {
	return options.NoError(func(c *Config) { c.Polarisation = true })
}

// WithSinglePrec stores particle fields as 32-bit floats instead of 64.
func WithSinglePrec() Option {
	return options.NoError(func(c *Config) { c.SinglePrec = true })
}

// WithUserFlags enables per-particle userflags storage.
func WithUserFlags() Option {
	return options.NoError(func(c *Config) { c.UserFlags = true })
}

// WithUniversalPDG fixes pdgcode to a single value for every particle,
// removing the pdgcode column from the per-particle record.
func WithUniversalPDG(pdg int32) Option {
	return options.NoError(func(c *Config) {
		c.HasUniversalPDG = true
		c.UniversalPDG = pdg
	})
}

// WithUniversalWeight fixes weight to a single value for every particle,
// removing the weight column from the per-particle record.
func WithUniversalWeight(w float64) Option {
	return options.NoError(func(c *Config) {
		c.HasUniversalWeight = true
		c.UniversalWeight = w
	})
}

// WithSourceName sets the file's sourcename field.
func WithSourceName(name []byte) Option {
	return options.NoError(func(c *Config) { c.SourceName = name })
}

// WithComment appends a comment to the file's header.
func WithComment(comment []byte) Option {
	return options.NoError(func(c *Config) { c.Comments = append(c.Comments, comment) })
}

// WithBlob attaches a blob under key, rejecting duplicate keys.
func WithBlob(key string, data []byte) Option {
	return options.New(func(c *Config) error {
		for _, k := range c.BlobKeys {
			if k == key {
				return duplicateBlobKeyError(key)
			}
		}
		c.BlobKeys = append(c.BlobKeys, key)
		c.Blobs = append(c.Blobs, data)
		return nil
	})
}
