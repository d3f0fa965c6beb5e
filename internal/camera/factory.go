package camera

import (
	"fmt"
	"sort"
)

// SourceConfig はソース作成設定
type SourceConfig struct {
	Device   string   // デバイスパス、デバイス番号またはファイルパス
	Settings Settings // 設定
}

// SourceCreator はソース作成関数の型
type SourceCreator func(config SourceConfig) (FrameSource, error)

// SourceFactory はソース種別ごとの作成関数を保持する
type SourceFactory struct {
	creators map[SourceType]SourceCreator
}

// NewSourceFactory は標準のソースを登録したファクトリーを作成する
func NewSourceFactory() *SourceFactory {
	factory := &SourceFactory{
		creators: make(map[SourceType]SourceCreator),
	}

	factory.Register(SourceTypeUSBCamera, NewUSBCameraSourceFromConfig)
	factory.Register(SourceTypeVideoFile, NewVideoFileSourceFromConfig)

	return factory
}

// Register はソース作成関数を登録する
func (f *SourceFactory) Register(sourceType SourceType, creator SourceCreator) {
	f.creators[sourceType] = creator
}

// CreateSource はソースを作成する
func (f *SourceFactory) CreateSource(sourceType SourceType, config SourceConfig) (FrameSource, error) {
	creator, exists := f.creators[sourceType]
	if !exists {
		return nil, fmt.Errorf("サポートされていないソースタイプ: %s (対応: %v)", sourceType, f.GetSupportedTypes())
	}

	return creator(config)
}

// GetSupportedTypes はサポートされているソースタイプを返す
func (f *SourceFactory) GetSupportedTypes() []SourceType {
	types := make([]SourceType, 0, len(f.creators))
	for sourceType := range f.creators {
		types = append(types, sourceType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// NewUSBCameraSourceFromConfig は設定からUSBカメラのソースを作成する
func NewUSBCameraSourceFromConfig(config SourceConfig) (FrameSource, error) {
	if config.Device == "" {
		return nil, fmt.Errorf("USBカメラの作成にはデバイスが必要です")
	}

	info := SourceInfo{
		Name:   DeviceName(config.Device),
		Type:   SourceTypeUSBCamera,
		Device: config.Device,
	}

	return NewVideoCaptureSource(info, config.Settings), nil
}

// NewVideoFileSourceFromConfig は設定から動画ファイルのソースを作成する
func NewVideoFileSourceFromConfig(config SourceConfig) (FrameSource, error) {
	if config.Device == "" {
		return nil, fmt.Errorf("動画ファイルの作成にはパスが必要です")
	}

	info := SourceInfo{
		Name:   fmt.Sprintf("Video File (%s)", config.Device),
		Type:   SourceTypeVideoFile,
		Device: config.Device,
	}

	return NewVideoCaptureSource(info, config.Settings), nil
}
