package renderer

import "fmt"

var litVertex = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat4 uLightSpace;
uniform float uNormalBias;

out vec3 vWorld;
out vec3 vNormal;
out vec2 vUV;
out vec4 vLight;

void main() {
	vec4 world = uModel * vec4(aPos, 1.0);
	vWorld = world.xyz;
	vNormal = mat3(uModel) * aNormal;
	vUV = aUV;
	vLight = uLightSpace * vec4(world.xyz + normalize(vNormal) * uNormalBias, 1.0);
	gl_Position = uProjection * uView * world;
}
`

var litFragment = fmt.Sprintf(`#version 410 core
#define MAX_LIGHTS %d
in vec3 vWorld;
in vec3 vNormal;
in vec2 vUV;
in vec4 vLight;

uniform vec3 uSunDir;
uniform vec3 uSunColor;
uniform vec3 uAmbient;
uniform vec3 uEye;
uniform vec3 uDiffuse;
uniform float uOpacity;
uniform float uShininess;
uniform int uLightCount;
uniform vec3 uLightPos[MAX_LIGHTS];
uniform vec3 uLightColor[MAX_LIGHTS];
uniform float uLightRange[MAX_LIGHTS];
uniform int uTextured;
uniform sampler2D uTexture;
uniform int uShadows;
uniform sampler2DShadow uShadowMap;
uniform float uShadowBias;
uniform float uShadowTexel;

out vec4 FragColor;

// sunLit is the 3x3 PCF fraction of the sun reaching this fragment.
float sunLit() {
	if (uShadows == 0) return 1.0;
	vec3 p = vLight.xyz / vLight.w * 0.5 + 0.5;
	if (p.z > 1.0) return 1.0;
	float lit = 0.0;
	for (int x = -1; x <= 1; x++) {
		for (int y = -1; y <= 1; y++) {
			vec2 o = vec2(x, y) * uShadowTexel;
			lit += texture(uShadowMap, vec3(p.xy + o, p.z - uShadowBias));
		}
	}
	return lit / 9.0;
}

vec3 shade(vec3 n, vec3 l, vec3 v, vec3 c) {
	float diff = max(dot(n, l), 0.0);
	vec3 h = normalize(l + v);
	float spec = diff > 0.0 ? pow(max(dot(n, h), 0.0), uShininess) : 0.0;
	return c * (diff * uDiffuse + spec * 0.4);
}

void main() {
	vec3 n = normalize(vNormal);
	vec3 v = normalize(uEye - vWorld);
	vec3 color = uAmbient * uDiffuse + sunLit() * shade(n, normalize(uSunDir), v, uSunColor);
	for (int i = 0; i < uLightCount; i++) {
		vec3 d = uLightPos[i] - vWorld;
		float att = clamp(1.0 - length(d) / uLightRange[i], 0.0, 1.0);
		color += att * shade(n, normalize(d), v, uLightColor[i]);
	}
	float alpha = uOpacity;
	if (uTextured == 1) {
		vec4 t = texture(uTexture, vUV);
		if (t.a < 0.1) discard;
		color *= t.rgb;
		alpha *= t.a;
	}
	FragColor = vec4(color, alpha);
}
`, maxLights)

// depthVertex draws casters into the sun's depth map.
const depthVertex = `#version 410 core
layout (location = 0) in vec3 aPos;

uniform mat4 uModel;
uniform mat4 uLightSpace;

void main() {
	gl_Position = uLightSpace * uModel * vec4(aPos, 1.0);
}
`

const depthFragment = `#version 410 core
void main() {}
`

const lineVertex = `#version 410 core
layout (location = 0) in vec3 aPos;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

void main() {
	gl_Position = uProjection * uView * uModel * vec4(aPos, 1.0);
}
`

const lineFragment = `#version 410 core
uniform vec3 uColor;
out vec4 FragColor;

void main() {
	FragColor = vec4(uColor, 1.0);
}
`
