package models

// InstrumentMetadata describes one tradable symbol as reported by the venue
type InstrumentMetadata struct {
	Symbol       string  `json:"symbol" yaml:"symbol"`
	Description  string  `json:"description,omitempty" yaml:"description,omitempty"`
	PointSize    float64 `json:"point_size" yaml:"point_size"`
	ContractSize float64 `json:"contract_size" yaml:"contract_size"`
	TickSize     float64 `json:"tick_size" yaml:"tick_size"`
	TickValue    float64 `json:"tick_value" yaml:"tick_value"`
	MinVolume    float64 `json:"min_volume" yaml:"min_volume"`
	MaxVolume    float64 `json:"max_volume" yaml:"max_volume"`
	VolumeStep   float64 `json:"volume_step" yaml:"volume_step"`
	Digits       int32   `json:"digits" yaml:"digits"`
}
