package core

import (
	"math/bits"
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// Texture implements rhi.Texture.
type Texture struct {
	dev    *Device
	info   rhi.TextureCreateInfo
	hal    hal.Texture
	native any

	// chain is set for swap chain images, which are released by the
	// swap chain rather than by Destroy.
	chain *SwapChain

	mu        sync.Mutex
	destroyed bool
}

// CreateTexture implements rhi.Device.
func (d *Device) CreateTexture(info *rhi.TextureCreateInfo) (rhi.Texture, error) {
	const op = "Device.CreateTexture"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}
	t, err := d.createTexture(op, *info)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (d *Device) createTexture(op string, info rhi.TextureCreateInfo) (*Texture, error) {
	if err := d.validateTexture(op, &info); err != nil {
		return nil, err
	}

	native, err := d.variant.ProjectTexture(&info)
	if err != nil {
		return nil, err
	}

	ht, err := d.hal.CreateTexture(&hal.TextureDescriptor{
		Label:         info.DebugName,
		Size:          extent(info.Extent),
		MipLevelCount: info.MipLevels,
		SampleCount:   info.Samples,
		Dimension:     textureDimension(info.Dimension),
		Format:        TextureFormat(info.Format),
		Usage:         textureUsage(info.Usage),
	})
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}

	d.track()
	d.log.Debug("rhi: texture created",
		"name", info.DebugName,
		"format", info.Format.String(),
		"width", info.Extent.Width,
		"height", info.Extent.Height,
		"mips", info.MipLevels)
	return &Texture{dev: d, info: info, hal: ht, native: native}, nil
}

// validateTexture checks info and fills in defaulted fields.
func (d *Device) validateTexture(op string, info *rhi.TextureCreateInfo) error {
	e := info.Extent
	if e.Width == 0 || e.Height == 0 || e.DepthOrArrayLayers == 0 {
		return rhi.InvalidArgument(op, "texture %q has zero extent %dx%dx%d", info.DebugName, e.Width, e.Height, e.DepthOrArrayLayers)
	}
	if info.Dimension > rhi.TextureDimension3D {
		return rhi.InvalidArgument(op, "invalid texture dimension %d", info.Dimension)
	}
	if !info.Format.IsValid() {
		return rhi.InvalidArgument(op, "texture %q has invalid pixel format %s", info.DebugName, info.Format)
	}
	if !d.variant.SupportsFormat(info.Format) {
		return rhi.Unsupported(op, "pixel format %s has no %s mapping", info.Format, d.variant.Type())
	}
	if info.Usage.IsEmpty() || !rhi.TextureUsageAll.HasAll(info.Usage) {
		return rhi.InvalidArgument(op, "texture %q has invalid usage %#x", info.DebugName, info.Usage.Value())
	}
	if info.Format.IsDepthStencil() && info.Usage.Has(rhi.TextureUsageRenderAttachment) {
		return rhi.InvalidArgument(op, "depth format %s used as a color attachment", info.Format)
	}
	if !info.Format.IsDepthStencil() && info.Usage.Has(rhi.TextureUsageDepthStencilAttachment) {
		return rhi.InvalidArgument(op, "color format %s used as a depth-stencil attachment", info.Format)
	}
	if info.InitialState >= rhi.TextureStateCount {
		return rhi.InvalidArgument(op, "invalid initial state %d", info.InitialState)
	}

	if info.MipLevels == 0 {
		info.MipLevels = 1
	}
	if info.Samples == 0 {
		info.Samples = 1
	}
	switch info.Samples {
	case 1, 2, 4, 8:
	default:
		return rhi.InvalidArgument(op, "unsupported sample count %d", info.Samples)
	}
	if info.Samples > 1 {
		if info.Dimension != rhi.TextureDimension2D || info.MipLevels != 1 || e.DepthOrArrayLayers != 1 {
			return rhi.InvalidArgument(op, "multisampled texture %q must be a single 2D image", info.DebugName)
		}
		if info.Usage.Has(rhi.TextureUsageStorageBinding) {
			return rhi.InvalidArgument(op, "multisampled texture %q cannot be a storage binding", info.DebugName)
		}
	}

	l := d.gpu.exposed.Capabilities.Limits
	largest := max(e.Width, e.Height)
	switch info.Dimension {
	case rhi.TextureDimension1D:
		if e.Height != 1 || e.DepthOrArrayLayers != 1 {
			return rhi.InvalidArgument(op, "1D texture %q must have height and depth 1", info.DebugName)
		}
		if e.Width > l.MaxTextureDimension1D {
			return rhi.InvalidArgument(op, "width %d exceeds 1D limit %d", e.Width, l.MaxTextureDimension1D)
		}
		largest = e.Width
	case rhi.TextureDimension2D:
		if largest > l.MaxTextureDimension2D {
			return rhi.InvalidArgument(op, "extent %dx%d exceeds 2D limit %d", e.Width, e.Height, l.MaxTextureDimension2D)
		}
		if e.DepthOrArrayLayers > l.MaxTextureArrayLayers {
			return rhi.InvalidArgument(op, "%d array layers exceed limit %d", e.DepthOrArrayLayers, l.MaxTextureArrayLayers)
		}
	case rhi.TextureDimension3D:
		largest = max(largest, e.DepthOrArrayLayers)
		if largest > l.MaxTextureDimension3D {
			return rhi.InvalidArgument(op, "extent %dx%dx%d exceeds 3D limit %d", e.Width, e.Height, e.DepthOrArrayLayers, l.MaxTextureDimension3D)
		}
	}
	if maxMips := uint32(bits.Len32(largest)); info.MipLevels > maxMips {
		return rhi.InvalidArgument(op, "%d mip levels requested, at most %d fit %dx%d", info.MipLevels, maxMips, e.Width, e.Height)
	}
	return nil
}

// GetCreateInfo implements rhi.Texture.
func (t *Texture) GetCreateInfo() rhi.TextureCreateInfo { return t.info }

// Native returns the variant's projection of the texture.
func (t *Texture) Native() any { return t.native }

// HAL returns the execution-layer texture.
func (t *Texture) HAL() hal.Texture { return t.hal }

// arrayLayers returns the number of array layers (1 for 3D textures).
func (t *Texture) arrayLayers() uint32 {
	if t.info.Dimension == rhi.TextureDimension3D {
		return 1
	}
	return t.info.Extent.DepthOrArrayLayers
}

// mipExtent returns the size of mip level. Depth shrinks only for 3D
// textures; for layered textures it is the layer count.
func (t *Texture) mipExtent(mip uint32) rhi.Extent3D {
	e := t.info.Extent
	out := rhi.Extent3D{
		Width:              max(e.Width>>mip, 1),
		Height:             max(e.Height>>mip, 1),
		DepthOrArrayLayers: e.DepthOrArrayLayers,
	}
	if t.info.Dimension == rhi.TextureDimension3D {
		out.DepthOrArrayLayers = max(e.DepthOrArrayLayers>>mip, 1)
	}
	return out
}

// Destroy implements rhi.Texture. Swap chain images are owned by their
// swap chain and are not released here.
func (t *Texture) Destroy() {
	if t.chain != nil {
		return
	}
	t.release()
}

func (t *Texture) release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.dev.hal.DestroyTexture(t.hal)
	t.dev.untrack()
}

// =============================================================================
// TextureView
// =============================================================================

// TextureView implements rhi.TextureView.
type TextureView struct {
	texture *Texture
	info    rhi.TextureViewCreateInfo
	hal     hal.TextureView

	mu        sync.Mutex
	destroyed bool
}

// CreateTextureView implements rhi.Texture.
func (t *Texture) CreateTextureView(info *rhi.TextureViewCreateInfo) (rhi.TextureView, error) {
	const op = "Texture.CreateTextureView"
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}
	v := *info
	if err := t.validateView(op, &v); err != nil {
		return nil, err
	}

	hv, err := t.dev.hal.CreateTextureView(t.hal, &hal.TextureViewDescriptor{
		Label:           t.info.DebugName,
		Format:          TextureFormat(t.info.Format),
		Dimension:       textureViewDimension(v.Dimension),
		Aspect:          textureAspect(v.Aspect),
		BaseMipLevel:    v.BaseMipLevel,
		MipLevelCount:   v.MipLevelNum,
		BaseArrayLayer:  v.BaseArrayLayer,
		ArrayLayerCount: v.ArrayLayerNum,
	})
	if err != nil {
		return nil, backendError(t.dev.variant, op, err)
	}
	t.dev.track()
	return &TextureView{texture: t, info: v, hal: hv}, nil
}

// validateView checks a view against its texture and resolves zero
// counts to the rest of the texture.
func (t *Texture) validateView(op string, v *rhi.TextureViewCreateInfo) error {
	var need rhi.TextureUsageBits
	switch v.Type {
	case rhi.TextureViewTypeTextureBinding:
		need = rhi.TextureUsageTextureBinding
	case rhi.TextureViewTypeStorageBinding:
		need = rhi.TextureUsageStorageBinding
	case rhi.TextureViewTypeColorAttachment:
		need = rhi.TextureUsageRenderAttachment
	case rhi.TextureViewTypeDepthStencil:
		need = rhi.TextureUsageDepthStencilAttachment
	default:
		return rhi.InvalidArgument(op, "invalid texture view type %d", v.Type)
	}
	if !t.info.Usage.Has(need) {
		return rhi.InvalidArgument(op, "texture %q lacks the usage required by view type %d", t.info.DebugName, v.Type)
	}

	mips, layers := t.info.MipLevels, t.arrayLayers()
	if v.BaseMipLevel >= mips {
		return rhi.InvalidRange(op, "base mip %d outside [0, %d)", v.BaseMipLevel, mips)
	}
	if v.MipLevelNum == 0 {
		v.MipLevelNum = mips - v.BaseMipLevel
	}
	if v.MipLevelNum > mips-v.BaseMipLevel {
		return rhi.InvalidRange(op, "mips [%d, +%d) outside [0, %d)", v.BaseMipLevel, v.MipLevelNum, mips)
	}
	if v.BaseArrayLayer >= layers {
		return rhi.InvalidRange(op, "base layer %d outside [0, %d)", v.BaseArrayLayer, layers)
	}
	if v.ArrayLayerNum == 0 {
		v.ArrayLayerNum = layers - v.BaseArrayLayer
	}
	if v.ArrayLayerNum > layers-v.BaseArrayLayer {
		return rhi.InvalidRange(op, "layers [%d, +%d) outside [0, %d)", v.BaseArrayLayer, v.ArrayLayerNum, layers)
	}

	switch v.Type {
	case rhi.TextureViewTypeColorAttachment, rhi.TextureViewTypeDepthStencil, rhi.TextureViewTypeStorageBinding:
		if v.MipLevelNum != 1 {
			return rhi.InvalidArgument(op, "view type %d must select exactly one mip", v.Type)
		}
	}

	if v.Dimension == rhi.TextureViewDimensionUndefined {
		v.Dimension = t.viewDimension(v.ArrayLayerNum)
	}
	switch d := t.info.Dimension; v.Dimension {
	case rhi.TextureViewDimension1D:
		if d != rhi.TextureDimension1D {
			return rhi.InvalidArgument(op, "1D view of a non-1D texture")
		}
	case rhi.TextureViewDimension2D:
		if d != rhi.TextureDimension2D || v.ArrayLayerNum != 1 {
			return rhi.InvalidArgument(op, "2D view must select one layer of a 2D texture")
		}
	case rhi.TextureViewDimension2DArray:
		if d != rhi.TextureDimension2D {
			return rhi.InvalidArgument(op, "2D array view of a non-2D texture")
		}
	case rhi.TextureViewDimensionCube:
		if d != rhi.TextureDimension2D || v.ArrayLayerNum != 6 {
			return rhi.InvalidArgument(op, "cube view must select 6 layers of a 2D texture, got %d", v.ArrayLayerNum)
		}
	case rhi.TextureViewDimensionCubeArray:
		if d != rhi.TextureDimension2D || v.ArrayLayerNum%6 != 0 {
			return rhi.InvalidArgument(op, "cube array view must select a multiple of 6 layers, got %d", v.ArrayLayerNum)
		}
	case rhi.TextureViewDimension3D:
		if d != rhi.TextureDimension3D {
			return rhi.InvalidArgument(op, "3D view of a non-3D texture")
		}
	default:
		return rhi.InvalidArgument(op, "invalid view dimension %d", v.Dimension)
	}

	return checkAspect(op, t.info.Format, v.Aspect)
}

// viewDimension is the view shape of layers layers of t.
func (t *Texture) viewDimension(layers uint32) rhi.TextureViewDimension {
	switch t.info.Dimension {
	case rhi.TextureDimension1D:
		return rhi.TextureViewDimension1D
	case rhi.TextureDimension3D:
		return rhi.TextureViewDimension3D
	}
	if layers == 1 {
		return rhi.TextureViewDimension2D
	}
	return rhi.TextureViewDimension2DArray
}

// Texture implements rhi.TextureView.
func (v *TextureView) Texture() rhi.Texture { return v.texture }

// GetCreateInfo implements rhi.TextureView.
func (v *TextureView) GetCreateInfo() rhi.TextureViewCreateInfo { return v.info }

// HAL returns the execution-layer view.
func (v *TextureView) HAL() hal.TextureView { return v.hal }

// Destroy implements rhi.TextureView.
func (v *TextureView) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return
	}
	v.destroyed = true
	d := v.texture.dev
	d.hal.DestroyTextureView(v.hal)
	d.untrack()
}
