package shading

import "fmt"

// Attribute locations used by VertexSource.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribUV       = 2
	AttribTubeInfo = 3
)

// glslFloat prints f with a decimal point so GLSL parses it as a float.
func glslFloat(f float64) string {
	return fmt.Sprintf("%.6f", f)
}

// constantsBlock carries the Go constants into both shader stages.
var constantsBlock = fmt.Sprintf(`const float PI = 3.14159265359;
const float WAVE_COUNT = %s;
const float PULSE_COUNT = %s;
const float PULSE_SPEED = %s;
const float WIGGLE_FALLOFF = %s;
const float PULSE_FALLOFF = %s;
const float LIGHT_INTENSITY = %s;
const float AMBIENT_LEVEL = %s;
const float TINT_STRENGTH = %s;
const float GAMMA = %s;
const vec3 WARM_TINT = vec3(%s, %s, %s);
`,
	glslFloat(WaveCount), glslFloat(PulseCount), glslFloat(PulseSpeed),
	glslFloat(WiggleFalloff), glslFloat(PulseFalloff),
	glslFloat(LightIntensity), glslFloat(AmbientLevel), glslFloat(TintStrength),
	glslFloat(Gamma),
	glslFloat(WarmTint.X), glslFloat(WarmTint.Y), glslFloat(WarmTint.Z),
)

// VertexSource is the GLSL 4.1 vertex stage. It mirrors Displace.
var VertexSource = `#version 410 core
` + constantsBlock + fmt.Sprintf(`
layout (location = %d) in vec3 aPosition;
layout (location = %d) in vec3 aNormal;
layout (location = %d) in vec2 aUV;
layout (location = %d) in vec3 aTubeInfo;
`, AttribPosition, AttribNormal, AttribUV, AttribTubeInfo) + `
uniform mat4 uModel;
uniform mat4 uViewProj;
uniform mat3 uNormalMatrix;
uniform float uTime;
uniform float uPathProgress;
uniform float uWiggleSpeed;
uniform float uWiggleAmplitude;
uniform float uPulseAmplitude;
uniform bool uRigid;

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vUV;
out float vDistortion;

vec3 lateralDirection(vec3 p) {
    vec3 d = vec3(p.xy, 0.0);
    if (dot(d, d) < 1e-12) {
        return vec3(1.0, 0.0, 0.0);
    }
    return normalize(d);
}

void main() {
    vec3 pos = aPosition;
    float distortion = 0.0;
    if (!uRigid) {
        float p = fract(uPathProgress - aTubeInfo.y);
        float wiggle = sin(p * WAVE_COUNT * 2.0 * PI - uTime * uWiggleSpeed)
            * uWiggleAmplitude * (1.0 - WIGGLE_FALLOFF * p);
        float pulse = sin(p * PULSE_COUNT * 2.0 * PI - uTime * PULSE_SPEED)
            * uPulseAmplitude * (1.0 - PULSE_FALLOFF * p);
        pos += lateralDirection(aPosition) * wiggle + aNormal * pulse * aTubeInfo.z;
        distortion = wiggle + pulse;
    }

    vec4 world = uModel * vec4(pos, 1.0);
    vWorldPos = world.xyz;
    vNormal = uNormalMatrix * aNormal;
    vUV = aUV;
    vDistortion = distortion;
    gl_Position = uViewProj * world;
}
`

// FragmentSource is the GLSL 4.1 fragment stage. It mirrors Shade.
var FragmentSource = `#version 410 core
` + constantsBlock + `
in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vUV;
in float vDistortion;

uniform sampler2D uAlbedoMap;
uniform sampler2D uNormalMap;
uniform sampler2D uRoughnessMap;
uniform samplerCube uEnvMap;
uniform bool uUseMaps;
uniform bool uUseEnv;
uniform vec3 uColor;
uniform float uRoughness;
uniform float uMetallic;
uniform vec3 uLightDirection;
uniform vec3 uCameraPosition;
uniform float uEnvMapIntensity;

out vec4 fragColor;

vec3 perturbNormal(vec3 n, vec3 s) {
    vec3 ref = vec3(0.0, 1.0, 0.0);
    if (abs(dot(n, ref)) > 0.999) {
        ref = vec3(1.0, 0.0, 0.0);
    }
    vec3 t = normalize(cross(ref, n));
    vec3 b = cross(n, t);
    vec3 ts = s * 2.0 - 1.0;
    return normalize(t * ts.x + b * ts.y + n * ts.z);
}

float distributionGGX(float nDotH, float rough) {
    float a = rough * rough;
    float a2 = a * a;
    float d = nDotH * nDotH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float geometrySmith(float nDotV, float nDotL, float rough) {
    float k = (rough + 1.0) * (rough + 1.0) / 8.0;
    float gv = nDotV / (nDotV * (1.0 - k) + k);
    float gl = nDotL / (nDotL * (1.0 - k) + k);
    return gv * gl;
}

vec3 fresnelSchlick(float cosTheta, vec3 f0) {
    return f0 + (1.0 - f0) * pow(1.0 - clamp(cosTheta, 0.0, 1.0), 5.0);
}

vec3 fresnelRoughness(float cosTheta, vec3 f0, float rough) {
    return f0 + (max(vec3(1.0 - rough), f0) - f0) * pow(1.0 - clamp(cosTheta, 0.0, 1.0), 5.0);
}

void main() {
    vec3 n = normalize(vNormal);
    vec3 albedo = uColor;
    float rough = uRoughness;
    if (uUseMaps) {
        albedo = pow(texture(uAlbedoMap, vUV).rgb, vec3(GAMMA));
        rough = texture(uRoughnessMap, vUV).r;
        n = perturbNormal(n, texture(uNormalMap, vUV).rgb);
    }
    rough = clamp(rough, 0.04, 1.0);

    vec3 v = normalize(uCameraPosition - vWorldPos);
    vec3 l = normalize(uLightDirection);
    vec3 h = normalize(v + l);

    float nDotL = max(dot(n, l), 0.0);
    float nDotV = max(dot(n, v), 1e-4);
    float nDotH = max(dot(n, h), 0.0);
    float vDotH = max(dot(v, h), 0.0);

    vec3 f0 = mix(vec3(0.04), albedo, uMetallic);
    float d = distributionGGX(nDotH, rough);
    float g = geometrySmith(nDotV, nDotL, rough);
    vec3 f = fresnelSchlick(vDotH, f0);
    vec3 specular = f * d * g / (4.0 * nDotV * nDotL + 1e-4);

    vec3 kd = (1.0 - f) * (1.0 - uMetallic);
    vec3 diffuse = kd * albedo / PI;
    vec3 color = (diffuse + specular) * LIGHT_INTENSITY * nDotL;
    color += albedo * AMBIENT_LEVEL;

    if (uUseEnv) {
        vec3 r = reflect(-v, n);
        vec3 env = pow(texture(uEnvMap, r).rgb, vec3(GAMMA));
        color += env * fresnelRoughness(nDotV, f0, rough) * uEnvMapIntensity;
    }

    color += WARM_TINT * abs(vDistortion) * TINT_STRENGTH;
    fragColor = vec4(pow(clamp(color, 0.0, 1.0), vec3(1.0 / GAMMA)), 1.0);
}
`
