/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package serviceopts

import (
	"github.com/spf13/viper"

	"github.com/sabouaram/govarlink/verror"
)

// Identity is the service metadata named by spec §3 ("Service: identity
// metadata (vendor, product, version, url)").
type Identity struct {
	Vendor  string `mapstructure:"vendor"`
	Product string `mapstructure:"product"`
	Version string `mapstructure:"version"`
	URL     string `mapstructure:"url"`
}

// LoadIdentity reads vendor/product/version/url from a YAML file at path
// (grounded on nabbar-golib/config's pervasive viper use,
// RegisterFuncViper's style of handing configuration to components). This
// is optional sugar: identity can always be set directly via WithVendor
// etc.
func LoadIdentity(path string) (Identity, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return Identity{}, verror.UnknownError.Errorf("serviceopts: reading identity file %q: %v", path, err)
	}

	var id Identity
	if err := v.Unmarshal(&id); err != nil {
		return Identity{}, verror.UnknownError.Errorf("serviceopts: decoding identity file %q: %v", path, err)
	}
	return id, nil
}

// WithIdentity applies an Identity loaded via LoadIdentity.
func WithIdentity(id Identity) Option {
	return func(o *Options) {
		o.Vendor = id.Vendor
		o.Product = id.Product
		o.Version = id.Version
		o.URL = id.URL
	}
}
