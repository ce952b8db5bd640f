package render

import "holomesh/internal/gpu"

// Mono draws one view with separate view and projection matrices.
var Mono = gpu.ProgramSource{
	Vertex: `
uniform mat4 uModelMatrix;
uniform mat4 uViewMatrix;
uniform mat4 uProjMatrix;
attribute vec4 aPosition;
attribute vec4 aColor;
varying vec4 vColor;
void main()
{
    gl_Position = uProjMatrix * uViewMatrix * uModelMatrix * aPosition;
    vColor = aColor;
}
`,
	Fragment: `
precision mediump float;
varying vec4 vColor;
void main()
{
    gl_FragColor = vColor;
}
`,
}

// Holographic draws each mesh as two instances. The per-instance
// aRenderTargetArrayIndex picks the eye's view-projection and the layer of
// the render target.
var Holographic = gpu.ProgramSource{
	Vertex: `
uniform mat4 uModelMatrix;
uniform mat4 uHolographicViewProjectionMatrix[2];
attribute vec4 aPosition;
attribute vec4 aColor;
attribute float aRenderTargetArrayIndex;
varying vec4 vColor;
varying float vRenderTargetArrayIndex;
void main()
{
    int arrayIndex = int(aRenderTargetArrayIndex);
    gl_Position = uHolographicViewProjectionMatrix[arrayIndex] * uModelMatrix * aPosition;
    vColor = aColor;
    vRenderTargetArrayIndex = aRenderTargetArrayIndex;
}
`,
	Fragment: `
precision mediump float;
varying vec4 vColor;
varying float vRenderTargetArrayIndex;
void main()
{
    gl_FragColor = vColor;
}
`,
}
