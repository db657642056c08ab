package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/gettingback"
	"github.com/gekko3d/gettingback/mesh"
	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const DepthFormat = wgpu.TextureFormatDepth32Float

var ErrNoPipeline = errors.New("gpu: render before BuildPipeline")

type Options struct {
	Width, Height uint32
	VSync         bool
	ClearColor    [4]float64
}

// Renderer draws frames into a glfw window surface.
type Renderer struct {
	Surface *wgpu.Surface
	Adapter *wgpu.Adapter
	Device  *wgpu.Device
	Queue   *wgpu.Queue
	Config  *wgpu.SurfaceConfiguration

	Manager  *Manager
	Pipeline *wgpu.RenderPipeline

	pipelineLayout *wgpu.PipelineLayout
	vertexLayout   wgpu.VertexBufferLayout
	depthTexture   *wgpu.Texture
	depthView      *wgpu.TextureView
	clear          wgpu.Color
	log            gettingback.Logger
}

// NewRenderer wraps win in a surface and acquires a device for it. The pipeline
// is built separately by BuildPipeline.
func NewRenderer(win *glfw.Window, opts Options, log gettingback.Logger) (*Renderer, error) {
	if log == nil {
		log = gettingback.NewNopLogger()
	}
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	r := &Renderer{
		Surface: instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win)),
		clear:   wgpu.Color{R: opts.ClearColor[0], G: opts.ClearColor[1], B: opts.ClearColor[2], A: opts.ClearColor[3]},
		log:     log,
	}

	var err error
	r.Adapter, err = instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	r.Device, err = r.Adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Main Device"})
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	r.Queue = r.Device.GetQueue()

	caps := r.Surface.GetCapabilities(r.Adapter)
	r.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       opts.Width,
		Height:      opts.Height,
		PresentMode: presentMode(opts.VSync, caps.PresentModes),
		AlphaMode:   caps.AlphaModes[0],
	}
	r.Surface.Configure(r.Adapter, r.Device, r.Config)

	if err := r.createDepth(); err != nil {
		r.Release()
		return nil, err
	}
	if r.Manager, err = NewManager(r.Device, log); err != nil {
		r.Release()
		return nil, err
	}
	r.pipelineLayout, err = r.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "lit",
		BindGroupLayouts: r.Manager.BindGroupLayouts(),
	})
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("failed to create pipeline layout: %w", err)
	}

	vl, err := mesh.LayoutFor(rev2.Registry())
	if err != nil {
		r.Release()
		return nil, err
	}
	if r.vertexLayout, err = VertexBufferLayout(vl); err != nil {
		r.Release()
		return nil, err
	}
	log.Infof("gpu: surface %dx%d format %v", opts.Width, opts.Height, r.Config.Format)
	return r, nil
}

// presentMode falls back to fifo, the one mode every surface supports.
func presentMode(vsync bool, supported []wgpu.PresentMode) wgpu.PresentMode {
	if vsync {
		return wgpu.PresentModeFifo
	}
	for _, m := range supported {
		if m == wgpu.PresentModeImmediate || m == wgpu.PresentModeMailbox {
			return m
		}
	}
	return wgpu.PresentModeFifo
}

func (r *Renderer) createDepth() error {
	if r.depthView != nil {
		r.depthView.Release()
		r.depthTexture.Release()
	}
	var err error
	r.depthTexture, err = r.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "depth",
		Size:          wgpu.Extent3D{Width: r.Config.Width, Height: r.Config.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	if r.depthView, err = r.depthTexture.CreateView(nil); err != nil {
		return fmt.Errorf("failed to create depth view: %w", err)
	}
	return nil
}

// BuildPipeline checks src against the revision 2 registry and host layouts
// and compiles it. On any error the current pipeline stays in place, so a
// broken edit during hot reload keeps the last good shader.
func (r *Renderer) BuildPipeline(src string) error {
	rep, err := CheckShader(src)
	if err != nil {
		return fmt.Errorf("shader does not match bindings: %w", err)
	}
	for _, b := range rep.Unused {
		r.log.Debugf("gpu: shader ignores %s", b)
	}

	shader, err := r.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "lit",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src},
	})
	if err != nil {
		return fmt.Errorf("failed to compile shader: %w", err)
	}
	defer shader.Release()

	pipeline, err := r.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "lit",
		Layout: r.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{r.vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.Config.Format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	if r.Pipeline != nil {
		r.Pipeline.Release()
	}
	r.Pipeline = pipeline
	r.log.Infof("gpu: pipeline ready, %d bindings matched", len(rep.Matched))
	return nil
}

// Resize reconfigures the surface. A zero extent, as reported for a minimized
// window, is ignored.
func (r *Renderer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	r.Config.Width, r.Config.Height = width, height
	r.Surface.Configure(r.Adapter, r.Device, r.Config)
	return r.createDepth()
}

// Render uploads f and draws it into the next surface texture.
func (r *Renderer) Render(f *gettingback.Frame) error {
	if r.Pipeline == nil {
		return ErrNoPipeline
	}
	draws, err := r.Manager.Write(f)
	if err != nil {
		return err
	}

	next, err := r.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	defer next.Release()
	view, err := next.CreateView(nil)
	if err != nil {
		return fmt.Errorf("failed to create surface view: %w", err)
	}
	defer view.Release()

	encoder, err := r.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.clear,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	pass.SetPipeline(r.Pipeline)
	pass.SetBindGroup(rev2.GroupSamplers, r.Manager.SamplerGroup, nil)
	for _, d := range draws {
		pass.SetBindGroup(rev2.GroupBuffers, d.Buffers, nil)
		pass.SetBindGroup(rev2.GroupTextures, d.Textures, nil)
		pass.SetVertexBuffer(uint32(rev2.BufferIndexVertices), d.Mesh.Vertex, 0, d.Mesh.Vertex.GetSize())
		pass.SetIndexBuffer(d.Mesh.Index, wgpu.IndexFormatUint32, 0, d.Mesh.Index.GetSize())
		pass.DrawIndexed(d.Mesh.IndexCount, 1, 0, 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("render pass failed: %w", err)
	}
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish encoder: %w", err)
	}
	defer cmd.Release()
	r.Queue.Submit(cmd)
	r.Surface.Present()
	return nil
}

func (r *Renderer) Release() {
	if r.Pipeline != nil {
		r.Pipeline.Release()
	}
	if r.pipelineLayout != nil {
		r.pipelineLayout.Release()
	}
	if r.Manager != nil {
		r.Manager.Release()
	}
	if r.depthView != nil {
		r.depthView.Release()
	}
	if r.depthTexture != nil {
		r.depthTexture.Release()
	}
	if r.Device != nil {
		r.Device.Release()
	}
	if r.Adapter != nil {
		r.Adapter.Release()
	}
	if r.Surface != nil {
		r.Surface.Release()
	}
}
